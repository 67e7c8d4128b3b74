// Package catalog keeps a time-cached snapshot of the provider's sports list
// together with the alias index built from it.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/odds-chat/internal/alias"
	"github.com/sells-group/odds-chat/internal/model"
)

const (
	defaultTTL     = time.Hour
	defaultTimeout = 10 * time.Second
)

// Fetcher loads the current sports list from the provider.
type Fetcher interface {
	FetchSports(ctx context.Context) ([]model.Sport, error)
}

// SnapshotStore persists the last successfully fetched sports list so a
// restart during a provider outage still has something to resolve against.
type SnapshotStore interface {
	SaveCatalog(ctx context.Context, sports []model.Sport, fetchedAt time.Time) error
	// LoadCatalog returns a nil slice when nothing has been saved.
	LoadCatalog(ctx context.Context) ([]model.Sport, time.Time, error)
}

// Snapshot is one catalog generation. Sports and Index always come from the
// same fetch. Treat both as read-only.
type Snapshot struct {
	Sports    []model.Sport
	Index     *alias.Index
	FetchedAt time.Time

	restored bool
}

// Empty reports whether the snapshot holds no sports.
func (s *Snapshot) Empty() bool {
	return len(s.Sports) == 0
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL sets how long a fetched snapshot stays fresh. A TTL of zero or
// less fetches once and never refreshes on age.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithTimeout bounds each provider fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSnapshotStore enables warm start from, and persistence to, s.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(c *Catalog) { c.store = s }
}

// Catalog is safe for concurrent use. Readers see either the previous or the
// next snapshot, never a mix.
type Catalog struct {
	fetcher Fetcher
	store   SnapshotStore
	ttl     time.Duration
	timeout time.Duration

	current  atomic.Pointer[Snapshot]
	group    singleflight.Group
	restored atomic.Bool

	nowFunc func() time.Time
}

// New creates an empty catalog. Nothing is fetched until first use.
func New(f Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher: f,
		ttl:     defaultTTL,
		timeout: defaultTimeout,
		nowFunc: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Sports returns the cached sports list, refreshing it first when stale or
// when forceRefresh is set. Provider failures are logged and degrade to the
// last good list, or to an empty list if there has never been one.
func (c *Catalog) Sports(ctx context.Context, forceRefresh bool) []model.Sport {
	return c.Snapshot(ctx, forceRefresh).Sports
}

// Snapshot is like Sports but returns the matching alias index too. It never
// returns nil.
func (c *Catalog) Snapshot(ctx context.Context, forceRefresh bool) *Snapshot {
	if s := c.current.Load(); s != nil && !forceRefresh && c.fresh(s) {
		return s
	}

	v, _, _ := c.group.Do("sports", func() (any, error) {
		return c.refresh(ctx), nil
	})
	if s, _ := v.(*Snapshot); s != nil {
		return s
	}
	return emptySnapshot()
}

// Current returns the held snapshot without touching the provider.
func (c *Catalog) Current() *Snapshot {
	if s := c.current.Load(); s != nil {
		return s
	}
	return emptySnapshot()
}

func (c *Catalog) fresh(s *Snapshot) bool {
	if s.restored {
		return false
	}
	if c.ttl <= 0 {
		return true
	}
	return c.nowFunc().Sub(s.FetchedAt) < c.ttl
}

func (c *Catalog) refresh(ctx context.Context) *Snapshot {
	// The fetch is shared by every waiter, so it must outlive a single
	// caller's cancellation. The timeout still bounds it.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	sports, err := c.fetcher.FetchSports(fetchCtx)
	if err != nil {
		zap.L().Warn("catalog: fetch sports failed, serving cached snapshot",
			zap.Error(err),
			zap.Bool("has_snapshot", c.current.Load() != nil),
		)
		return c.fallback(fetchCtx)
	}

	s := &Snapshot{
		Sports:    sports,
		Index:     alias.Build(sports),
		FetchedAt: c.nowFunc(),
	}
	c.current.Store(s)
	zap.L().Debug("catalog: refreshed",
		zap.Int("sports", len(sports)),
		zap.Int("aliases", s.Index.Len()),
	)

	if c.store != nil {
		if err := c.store.SaveCatalog(fetchCtx, sports, s.FetchedAt); err != nil {
			zap.L().Warn("catalog: persist snapshot failed", zap.Error(err))
		}
	}
	return s
}

// fallback returns the held snapshot. With none held, it tries the snapshot
// store once per process.
func (c *Catalog) fallback(ctx context.Context) *Snapshot {
	if s := c.current.Load(); s != nil {
		return s
	}
	if c.store == nil || !c.restored.CompareAndSwap(false, true) {
		return nil
	}

	sports, fetchedAt, err := c.store.LoadCatalog(context.WithoutCancel(ctx))
	if err != nil {
		zap.L().Warn("catalog: load persisted snapshot failed", zap.Error(err))
		return nil
	}
	if len(sports) == 0 {
		return nil
	}

	s := &Snapshot{
		Sports:    sports,
		Index:     alias.Build(sports),
		FetchedAt: fetchedAt,
		restored:  true,
	}
	c.current.CompareAndSwap(nil, s)
	zap.L().Info("catalog: restored persisted snapshot",
		zap.Int("sports", len(sports)),
		zap.Time("fetched_at", fetchedAt),
	)
	return c.current.Load()
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Index: alias.Build(nil)}
}
