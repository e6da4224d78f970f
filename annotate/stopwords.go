package annotate

import (
	"bufio"
	"embed"
	"strings"
	"sync"

	"github.com/poiesic/conceptmap/core"
)

//go:embed stopwords/*.txt
var stopwordFS embed.FS

var loadStopWords = sync.OnceValue(func() map[core.Language]map[string]struct{} {
	sets := make(map[core.Language]map[string]struct{}, len(core.Languages))
	for _, lang := range core.Languages {
		data, err := stopwordFS.ReadFile("stopwords/" + string(lang) + ".txt")
		if err != nil {
			panic("annotate: missing stop-word list for " + string(lang))
		}
		set := make(map[string]struct{})
		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			set[strings.ToLower(word)] = struct{}{}
		}
		sets[lang] = set
	}
	return sets
})

// IsStopWord reports whether word is in the stop-word dictionary of lang.
// The lookup is case-insensitive.
func IsStopWord(lang core.Language, word string) bool {
	_, ok := loadStopWords()[lang][strings.ToLower(word)]
	return ok
}

// StopWordCount returns the size of the stop-word dictionary of lang.
func StopWordCount(lang core.Language) int {
	return len(loadStopWords()[lang])
}
