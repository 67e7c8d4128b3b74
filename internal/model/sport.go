package model

// Sport is a single league or competition offered by the odds provider.
// Snapshots of sports are immutable once fetched; a catalog refresh replaces
// the whole set.
type Sport struct {
	Key          string `json:"key" yaml:"key"`
	Group        string `json:"group,omitempty" yaml:"group,omitempty"`
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Active       bool   `json:"active" yaml:"active"`
	HasOutrights bool   `json:"has_outrights,omitempty" yaml:"has_outrights,omitempty"`
}

// AliasSource records which sport field produced an alias.
type AliasSource string

const (
	AliasSourceTitle       AliasSource = "title"
	AliasSourceDescription AliasSource = "description"
	AliasSourceKey         AliasSource = "key"
)

// AliasEntry maps one normalized, human-typeable string to a canonical sport
// key. Several entries may point at the same key.
type AliasEntry struct {
	Text     string      `json:"text"`
	SportKey string      `json:"sport_key"`
	Source   AliasSource `json:"source"`
}
