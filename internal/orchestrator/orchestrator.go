// Package orchestrator turns a chat message into one provider data fetch and
// a payload for the answer formatter.
package orchestrator

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/intent"
	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/pkg/oddsapi"
)

// DataProvider is the read-only subset of the sports data client used to
// answer a query.
type DataProvider interface {
	ListEvents(ctx context.Context, sportKey string) ([]oddsapi.Event, error)
	GetScores(ctx context.Context, sportKey string, daysFrom int) ([]oddsapi.Score, error)
	GetOdds(ctx context.Context, sportKey, regions, markets string) ([]oddsapi.EventOdds, error)
}

// SportResolver maps text to a sport key.
type SportResolver interface {
	Resolve(ctx context.Context, text string) (string, bool)
}

// Options tune the data fetched per intent.
type Options struct {
	ScoresDaysFrom int
	Region         string
	Markets        string
	NextEvents     int
}

// DefaultOptions returns the fetch parameters used in production.
func DefaultOptions() Options {
	return Options{
		ScoresDaysFrom: 1,
		Region:         "us",
		Markets:        "h2h",
		NextEvents:     3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ScoresDaysFrom <= 0 {
		o.ScoresDaysFrom = d.ScoresDaysFrom
	}
	if o.Region == "" {
		o.Region = d.Region
	}
	if o.Markets == "" {
		o.Markets = d.Markets
	}
	if o.NextEvents <= 0 {
		o.NextEvents = d.NextEvents
	}
	return o
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	resolver SportResolver
	provider DataProvider
	opts     Options
}

// New creates an Orchestrator.
func New(resolver SportResolver, provider DataProvider, opts Options) *Orchestrator {
	return &Orchestrator{resolver: resolver, provider: provider, opts: opts.withDefaults()}
}

// ResolveIntentAndSport classifies text and, unless it is a greeting,
// resolves the sport it mentions.
func (o *Orchestrator) ResolveIntentAndSport(ctx context.Context, text string) model.ResolvedQuery {
	q := model.ResolvedQuery{Intent: intent.Classify(text)}
	if !q.Intent.Kind.NeedsSport() {
		return q
	}
	if key, ok := o.resolver.Resolve(ctx, text); ok {
		q.SportKey = key
	}
	return q
}

// BuildQueryPayload fetches the data q asks for. It never fails: provider
// errors are logged and treated as empty results.
func (o *Orchestrator) BuildQueryPayload(ctx context.Context, q model.ResolvedQuery) Result {
	res := Result{Query: q}

	if q.Intent.Kind == model.IntentGreeting {
		res.Message = GreetingMessage
		return res
	}
	if !q.Intent.Kind.NeedsSport() {
		return res
	}
	if !q.HasSport() {
		res.Reason = model.ErrNoMatch
		return res
	}

	key := q.SportKey
	res.Payload.SportKey = key
	log := zap.L().With(zap.String("intent", string(q.Intent.Kind)), zap.String("sport_key", key))

	switch q.Intent.Kind {
	case model.IntentScores:
		scores, err := o.provider.GetScores(ctx, key, o.opts.ScoresDaysFrom)
		if err != nil {
			log.Warn("orchestrator: get scores failed", zap.Error(err))
		}
		if len(scores) == 0 {
			res.Message = NoScoresMessage
			res.Reason = emptyReason(err)
			return res
		}
		res.Payload.Scores = scores

	case model.IntentOdds:
		odds, err := o.provider.GetOdds(ctx, key, o.opts.Region, o.opts.Markets)
		if err != nil {
			log.Warn("orchestrator: get odds failed", zap.Error(err))
		}
		if len(odds) == 0 {
			res.Message = NoOddsMessage
			res.Reason = emptyReason(err)
			return res
		}
		res.Payload.Odds = odds

	case model.IntentHomeTeam, model.IntentNextEvent:
		events, err := o.provider.ListEvents(ctx, key)
		if err != nil {
			log.Warn("orchestrator: list events failed", zap.Error(err))
		}
		if len(events) == 0 {
			return Result{Query: q, Reason: emptyReason(err)}
		}
		events = byCommenceTime(events)
		if q.Intent.Kind == model.IntentHomeTeam {
			first := events[0]
			res.Payload.Matchup = &Matchup{
				HomeTeam:     first.HomeTeam,
				AwayTeam:     first.AwayTeam,
				CommenceTime: first.CommenceTime,
			}
		} else {
			res.Payload.NextEvents = events[:min(o.opts.NextEvents, len(events))]
		}
	}
	return res
}

// Handle runs ResolveIntentAndSport and BuildQueryPayload for one message.
func (o *Orchestrator) Handle(ctx context.Context, text string) Result {
	return o.BuildQueryPayload(ctx, o.ResolveIntentAndSport(ctx, text))
}

// emptyReason explains an empty branch: the provider error if there was one,
// otherwise ErrEmptyResult.
func emptyReason(err error) error {
	if err != nil {
		return err
	}
	return model.ErrEmptyResult
}

func byCommenceTime(events []oddsapi.Event) []oddsapi.Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b oddsapi.Event) int {
		return cmp.Compare(a.CommenceTime.UnixNano(), b.CommenceTime.UnixNano())
	})
	return sorted
}
