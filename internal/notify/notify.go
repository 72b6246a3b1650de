// internal/notify/notify.go
//
// Push notification transport. The core only needs a Publisher; the
// production implementation posts to an SNS-style HTTP gateway, and Fake
// records publishes in memory for tests.
//
// Publishes are fire-and-forget with the per-call error captured by the
// caller; batch jobs collect failures per item and never abort on one.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Payload is the notification body fanned out to a device target.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Publisher delivers one payload to one target (a device ARN or equivalent).
type Publisher interface {
	Publish(ctx context.Context, target string, payload Payload) error
}

// HTTPPublisher posts publishes to a push gateway endpoint as JSON.
type HTTPPublisher struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPPublisher builds a publisher for the given gateway endpoint.
func NewHTTPPublisher(endpoint string) *HTTPPublisher {
	return &HTTPPublisher{Endpoint: endpoint, Client: &http.Client{}}
}

// Publish posts {target, payload} and treats any non-2xx status as an error.
func (p *HTTPPublisher) Publish(ctx context.Context, target string, payload Payload) error {
	body, err := json.Marshal(map[string]any{"target": target, "payload": payload})
	if err != nil {
		return fmt.Errorf("notify: encode publish: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build publish: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: publish to %s: %w", target, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("notify: publish to %s: status %d", target, res.StatusCode)
	}
	return nil
}

// Fake is an in-memory Publisher for tests. FailTargets makes specific
// targets error without affecting the rest of a batch.
type Fake struct {
	mu          sync.Mutex
	Published   []FakePublish
	FailTargets map[string]error
}

// FakePublish records one delivered publish.
type FakePublish struct {
	Target  string
	Payload Payload
}

func (f *Fake) Publish(ctx context.Context, target string, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailTargets[target]; ok {
		return err
	}
	f.Published = append(f.Published, FakePublish{Target: target, Payload: payload})
	return nil
}

// Item is one entry of a fan-out batch.
type Item struct {
	Target  string
	Payload Payload
}

// Result is the per-item outcome of a fan-out batch.
type Result struct {
	Target string
	Err    error
}

// FanOut publishes every item with at most concurrency in-flight publishes.
// Each publish gets its own timeout; a timeout or error is that item's
// failure and never aborts the batch. Results preserve item order.
func FanOut(ctx context.Context, pub Publisher, items []Item, concurrency int, timeout time.Duration) []Result {
	if concurrency <= 0 {
		concurrency = 4
	}
	results := make([]Result, len(items))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item Item) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			results[i] = Result{Target: item.Target, Err: pub.Publish(callCtx, item.Target, item.Payload)}
		}(i, item)
	}
	wg.Wait()
	return results
}
