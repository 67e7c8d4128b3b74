package main

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/alias"
	"github.com/sells-group/odds-chat/internal/answer"
	"github.com/sells-group/odds-chat/internal/catalog"
	"github.com/sells-group/odds-chat/internal/chat"
	"github.com/sells-group/odds-chat/internal/orchestrator"
	"github.com/sells-group/odds-chat/internal/provider"
	"github.com/sells-group/odds-chat/internal/resilience"
	"github.com/sells-group/odds-chat/internal/resolver"
	"github.com/sells-group/odds-chat/internal/store"
	anthropicpkg "github.com/sells-group/odds-chat/pkg/anthropic"
	"github.com/sells-group/odds-chat/pkg/oddsapi"
)

// coreEnv holds the resolution stack shared by every command.
type coreEnv struct {
	Provider *provider.Resilient
	Catalog  *catalog.Catalog
	Resolver *resolver.Resolver
}

// chatEnv adds the transcript store, orchestrator, and formatter needed by
// the chat and serve commands.
type chatEnv struct {
	*coreEnv
	Store        store.Store
	Orchestrator *orchestrator.Orchestrator
	Chat         *chat.Service
}

// Close releases resources held by the chat environment.
func (ce *chatEnv) Close() {
	if ce.Store != nil {
		_ = ce.Store.Close()
	}
}

// initCore builds the provider client, catalog, and resolver. snapshots may
// be nil, in which case the catalog keeps nothing across restarts.
func initCore(snapshots catalog.SnapshotStore) *coreEnv {
	odds := oddsapi.NewClient(cfg.Odds.Key,
		oddsapi.WithBaseURL(cfg.Odds.BaseURL),
		oddsapi.WithTimeout(cfg.Odds.Timeout()),
		oddsapi.WithRateLimit(cfg.Odds.RatePerSec),
	)
	breaker := resilience.NewCircuitBreaker(resilience.CircuitFromConfig("oddsapi", cfg.Resilience))
	prov := provider.NewResilient(odds, resilience.RetryFromConfig(cfg.Resilience), breaker)

	catOpts := []catalog.Option{
		catalog.WithTTL(cfg.Catalog.TTL()),
		catalog.WithTimeout(cfg.Odds.Timeout()),
	}
	if snapshots != nil {
		catOpts = append(catOpts, catalog.WithSnapshotStore(snapshots))
	}
	cat := catalog.New(catalog.ProviderFetcher{
		Client:          prov,
		IncludeInactive: cfg.Catalog.IncludeInactive,
	}, catOpts...)

	res := resolver.New(cat,
		resolver.WithFuzzyCutoff(cfg.Resolver.FuzzyCutoff),
		resolver.WithSimilarity(alias.NewSimilarity(cfg.Resolver.Similarity)),
	)

	return &coreEnv{Provider: prov, Catalog: cat, Resolver: res}
}

// initChat validates config for mode, opens and migrates the store, and
// wires the full turn handler. Callers should defer env.Close().
func initChat(ctx context.Context, mode string) (*chatEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	core := initCore(st)
	orch := orchestrator.New(core.Resolver, core.Provider, orchestrator.Options{
		ScoresDaysFrom: cfg.Orchestrator.ScoresDaysFrom,
		Region:         cfg.Odds.Region,
		Markets:        cfg.Odds.Markets,
		NextEvents:     cfg.Orchestrator.NextEvents,
	})

	llm := anthropicpkg.NewClient(cfg.Anthropic.Key, option.WithMaxRetries(2))
	formatter := answer.NewFormatter(llm, cfg.Anthropic)

	zap.L().Debug("chat environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("model", cfg.Anthropic.Model),
		zap.Float64("fuzzy_cutoff", cfg.Resolver.FuzzyCutoff),
	)

	return &chatEnv{
		coreEnv:      core,
		Store:        st,
		Orchestrator: orch,
		Chat:         chat.NewService(orch, formatter, st),
	}, nil
}
