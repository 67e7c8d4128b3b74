// Package intent decides which kind of sports data a message asks for.
package intent

import (
	"strings"

	"github.com/sells-group/odds-chat/internal/alias"
	"github.com/sells-group/odds-chat/internal/model"
)

// Rule reports whether normalized text asks for Kind.
type Rule struct {
	Kind  model.IntentKind
	Match func(text string) bool
}

var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good evening":   {},
	"good afternoon": {},
}

func contains(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// Rules are evaluated in order and the first match wins, so "score and odds"
// is a scores request.
var Rules = []Rule{
	{Kind: model.IntentGreeting, Match: func(text string) bool {
		_, ok := greetings[text]
		return ok
	}},
	{Kind: model.IntentScores, Match: contains("score")},
	{Kind: model.IntentOdds, Match: contains("odds", "bet")},
	{Kind: model.IntentHomeTeam, Match: contains("home team", "home-team")},
	{Kind: model.IntentNextEvent, Match: contains("next", "upcoming", "when is", "who is playing")},
}

// Fallback is returned when no rule matches. Unclassified text is treated as
// a request for upcoming events.
const Fallback = model.IntentNextEvent

// Classify returns the first matching intent for text.
func Classify(text string) model.ResolvedIntent {
	norm := alias.Normalize(text)
	kind := Fallback
	for _, r := range Rules {
		if r.Match(norm) {
			kind = r.Kind
			break
		}
	}
	return model.ResolvedIntent{Kind: kind, RawText: text}
}
