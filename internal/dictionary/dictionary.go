// internal/dictionary/dictionary.go
//
// Word list management for the validator.
//
// Responsibilities:
//   - Load a word list per language from a configured file or the embedded
//     fallback list.
//   - Answer membership queries (Contains) and prefix queries (Lookup) for
//     concurrent request handlers.
//
// The dictionary is an explicitly owned cache: languages are loaded at
// startup (or on demand) and unloaded rarely. A RWMutex guards the language
// map; the per-language word data is immutable once loaded, so reads after
// load take only the read lock.
//
// Constraints:
//   - Words are normalized to uppercase A-Z.
//   - Words shorter than 3 letters are dropped at load time.

package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/lexicube/go-server/assets"
)

// Result classifies a Lookup answer.
type Result int

const (
	ResultNone   Result = iota // not a word, not a prefix of one
	ResultPrefix               // proper prefix of at least one word
	ResultWord                 // a full word
)

// wordList is the immutable per-language data.
type wordList struct {
	sorted []string
	set    map[string]struct{}
}

// Dictionary holds loaded word lists keyed by language code ("en", ...).
type Dictionary struct {
	mu    sync.RWMutex
	langs map[string]*wordList
}

// New returns an empty dictionary with no languages loaded.
func New() *Dictionary {
	return &Dictionary{langs: make(map[string]*wordList)}
}

// Load installs words as the list for language, replacing any previous list.
func (d *Dictionary) Load(language string, words []string) error {
	list := buildList(words)
	if len(list.sorted) == 0 {
		return fmt.Errorf("dictionary: empty word list for %q", language)
	}
	d.mu.Lock()
	d.langs[language] = list
	d.mu.Unlock()
	return nil
}

// LoadReader reads one word per line from r and installs the list.
func (d *Dictionary) LoadReader(language string, r io.Reader) error {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("dictionary: read %s list: %w", language, err)
	}
	return d.Load(language, words)
}

// LoadFile loads the list for language from a file at path.
func (d *Dictionary) LoadFile(language, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dictionary: open %s list: %w", language, err)
	}
	defer f.Close()
	return d.LoadReader(language, f)
}

// LoadEmbedded loads the list shipped in the binary for language.
func (d *Dictionary) LoadEmbedded(language string) error {
	words, err := assets.WordList(language)
	if err != nil {
		return fmt.Errorf("dictionary: embedded %s list: %w", language, err)
	}
	return d.Load(language, words)
}

// Unload drops the list for language, if loaded.
func (d *Dictionary) Unload(language string) {
	d.mu.Lock()
	delete(d.langs, language)
	d.mu.Unlock()
}

// Contains reports whether word is in the language's list.
// Returns false for languages that are not loaded.
func (d *Dictionary) Contains(word, language string) bool {
	return d.Lookup(word, language) == ResultWord
}

// Lookup classifies s against the language's list: a full word, a proper
// prefix of at least one word, or neither. Prefix answers let callers prune
// speculative searches cheaply.
func (d *Dictionary) Lookup(s, language string) Result {
	d.mu.RLock()
	list := d.langs[language]
	d.mu.RUnlock()
	if list == nil {
		return ResultNone
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ResultNone
	}
	if _, ok := list.set[s]; ok {
		return ResultWord
	}
	// First sorted word >= s; if it starts with s, s is a prefix.
	i := sort.SearchStrings(list.sorted, s)
	if i < len(list.sorted) && strings.HasPrefix(list.sorted[i], s) {
		return ResultPrefix
	}
	return ResultNone
}

// Stats returns the loaded word count per language.
func (d *Dictionary) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]int, len(d.langs))
	for lang, list := range d.langs {
		out[lang] = len(list.sorted)
	}
	return out
}

// buildList normalizes, filters, dedupes, and sorts a raw word slice.
func buildList(words []string) *wordList {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) < 3 || !isAlpha(w) {
			continue
		}
		set[w] = struct{}{}
	}
	sorted := make([]string, 0, len(set))
	for w := range set {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)
	return &wordList{sorted: sorted, set: set}
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
