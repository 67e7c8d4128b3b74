package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/model"
)

// heuristic maps a sport family mentioned in text to a key. Rules that pick
// from the catalog return false when the catalog has no such family.
type heuristic struct {
	name  string
	match func(text string) bool
	pick  func(sports []model.Sport) (string, bool)
}

func fixed(key string) func([]model.Sport) (string, bool) {
	return func([]model.Sport) (string, bool) { return key, true }
}

func firstWithPrefix(prefix string) func([]model.Sport) (string, bool) {
	return func(sports []model.Sport) (string, bool) {
		for _, s := range sports {
			if strings.HasPrefix(s.Key, prefix) {
				return s.Key, true
			}
		}
		return "", false
	}
}

func containsAny(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

// heuristics are tried in order. "football" without "soccer" is American
// football.
var heuristics = []heuristic{
	{
		name: "american_football",
		match: func(text string) bool {
			return strings.Contains(text, "football") && !strings.Contains(text, "soccer")
		},
		pick: fixed("americanfootball_nfl"),
	},
	{name: "soccer", match: containsAny("soccer"), pick: fixed("soccer_epl")},
	{name: "basketball", match: containsAny("basketball", "nba"), pick: fixed("basketball_nba")},
	{name: "baseball", match: containsAny("baseball", "mlb"), pick: fixed("baseball_mlb")},
	{name: "cricket", match: containsAny("cricket"), pick: firstWithPrefix("cricket_")},
	{name: "hockey", match: containsAny("hockey", "nhl"), pick: fixed("icehockey_nhl")},
	{name: "tennis", match: containsAny("tennis"), pick: firstWithPrefix("tennis_")},
}

func applyHeuristics(sports []model.Sport, text string) (string, bool) {
	for _, h := range heuristics {
		if !h.match(text) {
			continue
		}
		if key, ok := h.pick(sports); ok {
			zap.L().Debug("resolver: family heuristic matched", zap.String("rule", h.name), zap.String("sport_key", key))
			return key, true
		}
	}
	return "", false
}
