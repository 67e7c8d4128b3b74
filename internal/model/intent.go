package model

// IntentKind is the category of sports data a chat message asks for.
type IntentKind string

const (
	IntentGreeting  IntentKind = "greeting"
	IntentScores    IntentKind = "scores"
	IntentOdds      IntentKind = "odds"
	IntentHomeTeam  IntentKind = "home_team"
	IntentNextEvent IntentKind = "next_event"
	IntentGeneral   IntentKind = "general"
)

// NeedsSport reports whether the intent is answered from live sport data.
// Greeting and General never carry a sport key.
func (k IntentKind) NeedsSport() bool {
	switch k {
	case IntentScores, IntentOdds, IntentHomeTeam, IntentNextEvent:
		return true
	default:
		return false
	}
}

// ResolvedIntent is the classifier output for a single message.
type ResolvedIntent struct {
	Kind    IntentKind `json:"kind"`
	RawText string     `json:"raw_text"`
}

// ResolvedQuery pairs an intent with the sport it refers to. SportKey is
// empty when no sport could be resolved or the intent does not need one.
type ResolvedQuery struct {
	Intent   ResolvedIntent `json:"intent"`
	SportKey string         `json:"sport_key,omitempty"`
}

// HasSport reports whether a sport key was resolved.
func (q ResolvedQuery) HasSport() bool {
	return q.SportKey != ""
}
