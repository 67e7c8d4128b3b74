package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/pkg/oddsapi"
)

// SportsLister is the subset of oddsapi.Client the catalog needs.
type SportsLister interface {
	ListSports(ctx context.Context, all bool) ([]oddsapi.Sport, error)
}

// ProviderFetcher adapts an Odds API client to Fetcher.
type ProviderFetcher struct {
	Client SportsLister
	// IncludeInactive requests out-of-season sports too.
	IncludeInactive bool
}

// FetchSports lists sports and converts them to the domain type, keeping the
// provider's order.
func (f ProviderFetcher) FetchSports(ctx context.Context) ([]model.Sport, error) {
	raw, err := f.Client.ListSports(ctx, f.IncludeInactive)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list sports")
	}
	out := make([]model.Sport, 0, len(raw))
	for _, s := range raw {
		if s.Key == "" {
			continue
		}
		out = append(out, model.Sport{
			Key:          s.Key,
			Group:        s.Group,
			Title:        s.Title,
			Description:  s.Description,
			Active:       s.Active,
			HasOutrights: s.HasOutrights,
		})
	}
	return out, nil
}
