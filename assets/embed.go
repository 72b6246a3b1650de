// assets/embed.go
//
// Embedded fallback word lists, one per language, so the server can run
// without any dictionary files configured. Production deployments point
// DictionaryDir at full lists; the embedded ones are small.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed dictionaries/*.txt
var FS embed.FS

// WordList returns the embedded word list for a language code ("en").
func WordList(language string) ([]string, error) {
	f, err := FS.Open("dictionaries/" + language + ".txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}
