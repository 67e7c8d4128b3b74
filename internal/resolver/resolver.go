// Package resolver maps free-form text to a canonical sport key.
package resolver

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/alias"
	"github.com/sells-group/odds-chat/internal/catalog"
	"github.com/sells-group/odds-chat/internal/model"
)

// DefaultFuzzyCutoff is the minimum similarity for a fuzzy match.
const DefaultFuzzyCutoff = 0.6

// Step names the resolution stage that produced a match.
type Step string

// Resolution stages, in the order they are tried.
const (
	StepExact     Step = "exact"
	StepSubstring Step = "substring"
	StepFuzzy     Step = "fuzzy"
	StepHeuristic Step = "heuristic"
	StepNone      Step = "none"
)

// SnapshotSource supplies a consistent sports list and alias index.
// *catalog.Catalog satisfies it.
type SnapshotSource interface {
	Snapshot(ctx context.Context, forceRefresh bool) *catalog.Snapshot
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFuzzyCutoff sets the minimum similarity for a fuzzy match.
func WithFuzzyCutoff(cutoff float64) Option {
	return func(r *Resolver) { r.cutoff = cutoff }
}

// WithSimilarity sets the fuzzy matching algorithm.
func WithSimilarity(sim alias.Similarity) Option {
	return func(r *Resolver) {
		if sim != nil {
			r.sim = sim
		}
	}
}

// Resolver is safe for concurrent use.
type Resolver struct {
	source SnapshotSource
	cutoff float64
	sim    alias.Similarity
}

// New creates a Resolver reading from source.
func New(source SnapshotSource, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		cutoff: DefaultFuzzyCutoff,
		sim:    alias.RatcliffObershelp{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the sport key for text, or false when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, bool) {
	key, _ := r.Explain(ctx, text)
	return key, key != ""
}

// Explain resolves text and reports which stage matched. The key is empty
// when the stage is StepNone.
func (r *Resolver) Explain(ctx context.Context, text string) (string, Step) {
	norm := alias.Normalize(text)
	if norm == "" {
		return "", StepNone
	}

	snap := r.source.Snapshot(ctx, false)
	key, step := r.resolve(snap, norm)

	zap.L().Debug("resolver: resolved sport",
		zap.String("text", norm),
		zap.String("step", string(step)),
		zap.String("sport_key", key),
	)
	return key, step
}

func (r *Resolver) resolve(snap *catalog.Snapshot, norm string) (string, Step) {
	idx := snap.Index

	if key, ok := idx.LookupExact(norm); ok {
		return key, StepExact
	}
	if key, ok := longestContained(idx, norm); ok {
		return key, StepSubstring
	}
	if key, ok := idx.LookupFuzzy(norm, r.cutoff, r.sim); ok {
		return key, StepFuzzy
	}
	if key, ok := applyHeuristics(snap.Sports, norm); ok {
		return key, StepHeuristic
	}
	return "", StepNone
}

// longestContained scans titles and keys that occur inside text and keeps
// the longest. Equal lengths keep the earliest entry, so a short generic
// alias never shadows a more specific one.
func longestContained(idx *alias.Index, text string) (string, bool) {
	var best model.AliasEntry
	for _, e := range idx.Entries() {
		if e.Source == model.AliasSourceDescription {
			continue
		}
		if len(e.Text) <= len(best.Text) || !strings.Contains(text, e.Text) {
			continue
		}
		best = e
	}
	if best.Text == "" {
		return "", false
	}
	if best.Source == model.AliasSourceKey {
		return best.SportKey, true
	}
	// Route titles through the exact table so collisions resolve the same way.
	return idx.LookupExact(best.Text)
}
