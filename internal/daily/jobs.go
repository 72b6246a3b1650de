// internal/daily/jobs.go
//
// Scheduled batch jobs for the daily challenge, run from cron via the -job
// flag. Both jobs fan publishes out with bounded parallelism and collect
// per-item results; a failed or timed-out publish is logged and counted,
// never fatal to the batch.

package daily

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lexicube/go-server/internal/notify"
)

// Jobs bundles the dependencies of the batch notifiers.
type Jobs struct {
	Store       *Store
	Publisher   notify.Publisher
	Concurrency int
	Timeout     time.Duration
}

// EndsSoon notifies every registered device about challenges ending within
// threshold of now. Returns the per-item publish results.
func (j *Jobs) EndsSoon(ctx context.Context, threshold time.Duration, now time.Time) ([]notify.Result, error) {
	active, err := j.Store.Active(ctx, now)
	if err != nil {
		return nil, err
	}

	var ending []Challenge
	for _, ch := range active {
		if remaining := ch.EndsAtTime().Sub(now); remaining > 0 && remaining <= threshold {
			ending = append(ending, ch)
		}
	}
	if len(ending) == 0 {
		return nil, nil
	}

	devices, err := j.Store.Devices(ctx, nil)
	if err != nil {
		return nil, err
	}

	var items []notify.Item
	for _, ch := range ending {
		minutes := int(ch.EndsAtTime().Sub(now).Minutes())
		payload := notify.Payload{
			Title: "Daily challenge ends soon",
			Body:  fmt.Sprintf("The %s daily challenge ends in %d minutes!", ch.GameMode, minutes),
			Data:  map[string]string{"challengeId": ch.ID, "language": ch.Language},
		}
		for _, d := range devices {
			items = append(items, notify.Item{Target: d.ARN, Payload: payload})
		}
	}

	results := notify.FanOut(ctx, j.Publisher, items, j.Concurrency, j.Timeout)
	logResults("ends-soon", results)
	return results, nil
}

// DailyReport notifies players after the challenges for date have ended.
// Players with ranked results get a personalized summary across both game
// modes; everyone else gets a generic "today's challenge is ready" push.
func (j *Jobs) DailyReport(ctx context.Context, date time.Time, language string, now time.Time) ([]notify.Result, error) {
	challenges := make(map[string]*Challenge, len(GameModes))
	var ids []string
	for _, mode := range GameModes {
		ch, err := j.Store.Find(ctx, DateKey(date), mode, language)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		challenges[mode] = ch
		ids = append(ids, ch.ID)
	}

	ranked, err := j.Store.ResultPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	rankedSet := make(map[string]struct{}, len(ranked))
	for _, p := range ranked {
		rankedSet[p] = struct{}{}
	}

	devices, err := j.Store.Devices(ctx, nil)
	if err != nil {
		return nil, err
	}

	var items []notify.Item
	for _, d := range devices {
		var payload notify.Payload
		if _, ok := rankedSet[d.PlayerID]; ok {
			payload, err = j.reportPayload(ctx, challenges, d.PlayerID)
			if err != nil {
				return nil, err
			}
		} else {
			payload = notify.Payload{
				Title: "Daily challenge",
				Body:  "Today's daily challenge is ready. Play now!",
			}
		}
		items = append(items, notify.Item{Target: d.ARN, Payload: payload})
	}

	results := notify.FanOut(ctx, j.Publisher, items, j.Concurrency, j.Timeout)
	logResults("daily-report", results)
	return results, nil
}

// reportPayload builds the personalized summary for one ranked player:
// a combined two-result message, a single-result message, or the generic
// fallback when ranks cannot be loaded.
func (j *Jobs) reportPayload(ctx context.Context, challenges map[string]*Challenge, playerID string) (notify.Payload, error) {
	type modeRank struct {
		mode string
		rank int
		of   int
	}
	var ranks []modeRank
	for _, mode := range GameModes {
		ch, ok := challenges[mode]
		if !ok {
			continue
		}
		r, played, err := j.Store.ResultRank(ctx, ch.ID, playerID)
		if err != nil {
			return notify.Payload{}, err
		}
		if played {
			ranks = append(ranks, modeRank{mode: mode, rank: r.Rank, of: r.OutOf})
		}
	}

	switch len(ranks) {
	case 2:
		return notify.Payload{
			Title: "Daily challenge results",
			Body: fmt.Sprintf("You ranked %d of %d (%s) and %d of %d (%s). A new challenge is ready!",
				ranks[0].rank, ranks[0].of, ranks[0].mode,
				ranks[1].rank, ranks[1].of, ranks[1].mode),
		}, nil
	case 1:
		return notify.Payload{
			Title: "Daily challenge results",
			Body: fmt.Sprintf("You ranked %d of %d (%s). A new challenge is ready!",
				ranks[0].rank, ranks[0].of, ranks[0].mode),
		}, nil
	default:
		return notify.Payload{
			Title: "Daily challenge",
			Body:  "Today's daily challenge is ready. Play now!",
		}, nil
	}
}

func logResults(job string, results []notify.Result) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Warn().Str("job", job).Str("target", r.Target).Err(r.Err).Msg("publish failed")
		}
	}
	log.Info().Str("job", job).Int("published", len(results)-failed).Int("failed", failed).Msg("batch done")
}
