package dictionary

import (
	"strings"
	"testing"
)

func loaded(t *testing.T, words ...string) *Dictionary {
	t.Helper()
	d := New()
	if err := d.Load("en", words); err != nil {
		t.Fatalf("load: %v", err)
	}
	return d
}

func TestContains(t *testing.T) {
	d := loaded(t, "cab", "QUEST", " cube ")
	for _, w := range []string{"CAB", "cab", "QUEST", "CUBE"} {
		if !d.Contains(w, "en") {
			t.Errorf("Contains(%q) = false, want true", w)
		}
	}
	if d.Contains("DOG", "en") {
		t.Errorf("Contains(DOG) = true, want false")
	}
	if d.Contains("CAB", "fr") {
		t.Errorf("unloaded language should contain nothing")
	}
}

func TestLookup(t *testing.T) {
	d := loaded(t, "QUEST", "QUEEN")
	cases := []struct {
		s    string
		want Result
	}{
		{"QUEST", ResultWord},
		{"QUE", ResultPrefix},
		{"quee", ResultPrefix},
		{"QUESTS", ResultNone},
		{"ZZZ", ResultNone},
		{"", ResultNone},
	}
	for _, tc := range cases {
		if got := d.Lookup(tc.s, "en"); got != tc.want {
			t.Errorf("Lookup(%q) = %d, want %d", tc.s, got, tc.want)
		}
	}
}

func TestLoadFiltersShortAndNonAlpha(t *testing.T) {
	d := loaded(t, "at", "it", "cab", "caf3", "don't", "cab")
	stats := d.Stats()
	if stats["en"] != 1 {
		t.Errorf("loaded %d words, want 1 (only CAB survives)", stats["en"])
	}
}

func TestLoadRejectsEmptyList(t *testing.T) {
	d := New()
	if err := d.Load("en", []string{"at", "1x"}); err == nil {
		t.Fatalf("expected error for a list with no usable words")
	}
}

func TestLoadReader(t *testing.T) {
	d := New()
	if err := d.LoadReader("en", strings.NewReader("cab\nquest\n")); err != nil {
		t.Fatalf("load reader: %v", err)
	}
	if !d.Contains("QUEST", "en") {
		t.Errorf("word from reader not found")
	}
}

func TestLoadEmbedded(t *testing.T) {
	d := New()
	if err := d.LoadEmbedded("en"); err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if !d.Contains("CAB", "en") {
		t.Errorf("embedded list should contain CAB")
	}
	if err := d.LoadEmbedded("xx"); err == nil {
		t.Errorf("expected error for unknown embedded language")
	}
}

func TestUnload(t *testing.T) {
	d := loaded(t, "cab")
	d.Unload("en")
	if d.Contains("CAB", "en") {
		t.Errorf("unloaded language still answers")
	}
}
