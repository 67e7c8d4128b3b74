package orchestrator

import (
	"time"

	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/pkg/oddsapi"
)

// Fixed replies for turns that need no answer formatting.
const (
	GreetingMessage = "Hey there! I can tell you about scores, upcoming matches, betting odds, or general sports info. What would you like to know?"
	NoScoresMessage = "I don't see any recent scores for that sport."
	NoOddsMessage   = "I don't see any odds for that sport right now."
)

// Matchup is the earliest upcoming event for a home team question.
type Matchup struct {
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// Payload is the structured live data handed to the answer formatter. The
// zero Payload means "no live data, answer from general knowledge".
type Payload struct {
	SportKey   string              `json:"sport_key,omitempty"`
	Scores     []oddsapi.Score     `json:"scores,omitempty"`
	Odds       []oddsapi.EventOdds `json:"odds,omitempty"`
	Matchup    *Matchup            `json:"matchup,omitempty"`
	NextEvents []oddsapi.Event     `json:"next_events,omitempty"`
}

// IsEmpty reports whether the payload carries no live data.
func (p Payload) IsEmpty() bool {
	return len(p.Scores) == 0 && len(p.Odds) == 0 && p.Matchup == nil && len(p.NextEvents) == 0
}

// Result is either a literal reply (Message set) or a payload to format.
type Result struct {
	Query   model.ResolvedQuery `json:"query"`
	Payload Payload             `json:"payload"`
	Message string              `json:"message,omitempty"`
	// Reason is set when live data was wanted but not delivered. It is
	// model.ErrNoMatch, model.ErrEmptyResult, or the provider error.
	Reason error `json:"-"`
}

// IsMessage reports whether the result should be sent to the user as is.
func (r Result) IsMessage() bool {
	return r.Message != ""
}
