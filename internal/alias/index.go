// Package alias maps human-readable sport names to canonical sport keys.
package alias

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/odds-chat/internal/model"
)

// Normalize lower-cases text with Unicode case folding rules and trims
// surrounding whitespace.
func Normalize(text string) string {
	// Casers carry state and are not safe for concurrent use.
	return strings.TrimSpace(cases.Lower(language.Und).String(text))
}

// Index is an immutable alias table built from one catalog snapshot.
type Index struct {
	aliases map[string]string // normalized title/description -> key
	keys    map[string]string // normalized key -> key
	entries []model.AliasEntry
}

// Build indexes every sport's title, non-empty description and key. When two
// sports share an alias, the later one in sports wins.
func Build(sports []model.Sport) *Index {
	idx := &Index{
		aliases: make(map[string]string, len(sports)*2),
		keys:    make(map[string]string, len(sports)),
		entries: make([]model.AliasEntry, 0, len(sports)*3),
	}
	for _, s := range sports {
		if t := Normalize(s.Title); t != "" {
			idx.aliases[t] = s.Key
			idx.entries = append(idx.entries, model.AliasEntry{Text: t, SportKey: s.Key, Source: model.AliasSourceTitle})
		}
		if d := Normalize(s.Description); d != "" {
			idx.aliases[d] = s.Key
			idx.entries = append(idx.entries, model.AliasEntry{Text: d, SportKey: s.Key, Source: model.AliasSourceDescription})
		}
	}
	for _, s := range sports {
		if k := Normalize(s.Key); k != "" {
			idx.keys[k] = s.Key
			idx.entries = append(idx.entries, model.AliasEntry{Text: k, SportKey: s.Key, Source: model.AliasSourceKey})
		}
	}
	return idx
}

// Len returns the number of distinct aliases, keys excluded.
func (idx *Index) Len() int {
	return len(idx.aliases)
}

// Aliases returns a copy of the alias to sport key mapping.
func (idx *Index) Aliases() map[string]string {
	out := make(map[string]string, len(idx.aliases))
	for k, v := range idx.aliases {
		out[k] = v
	}
	return out
}

// Entries returns the indexed entries in build order: titles and
// descriptions in catalog order, then keys. Collisions appear once per sport.
func (idx *Index) Entries() []model.AliasEntry {
	return append([]model.AliasEntry(nil), idx.entries...)
}

// LookupExact matches text against titles and descriptions, then canonical
// keys.
func (idx *Index) LookupExact(text string) (string, bool) {
	n := Normalize(text)
	if n == "" {
		return "", false
	}
	if key, ok := idx.aliases[n]; ok {
		return key, true
	}
	key, ok := idx.keys[n]
	return key, ok
}

// LookupFuzzy returns the sport whose alias or key scores highest against
// text, provided the score is at least cutoff. Ties keep the earliest entry
// in index order, unlike difflib.get_close_matches which prefers the
// largest string; index order follows the catalog so results are stable.
func (idx *Index) LookupFuzzy(text string, cutoff float64, sim Similarity) (string, bool) {
	n := Normalize(text)
	if n == "" || len(idx.entries) == 0 {
		return "", false
	}
	if sim == nil {
		sim = RatcliffObershelp{}
	}

	var (
		best      string
		bestScore = -1.0
	)
	for _, e := range idx.entries {
		score := sim.Ratio(e.Text, n)
		if score > bestScore {
			best, bestScore = e.Text, score
		}
	}
	if bestScore < cutoff {
		return "", false
	}
	return idx.resolveText(best), true
}

// resolveText maps an entry text back through the last-write-wins tables so
// a fuzzy hit on a shadowed alias agrees with LookupExact.
func (idx *Index) resolveText(text string) string {
	if key, ok := idx.aliases[text]; ok {
		return key
	}
	return idx.keys[text]
}
