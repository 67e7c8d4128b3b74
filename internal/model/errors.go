package model

import "github.com/rotisserie/eris"

// Error taxonomy for the resolution engine. None of these reach the end user
// as raw errors: provider failures degrade to stale or empty data, and the
// other two become literal chat replies.
var (
	// ErrProviderUnavailable covers network errors, timeouts and non-2xx
	// responses from the sports data provider.
	ErrProviderUnavailable = eris.New("sports data provider unavailable")

	// ErrNoMatch means no sport key could be resolved from the text.
	ErrNoMatch = eris.New("no matching sport")

	// ErrEmptyResult means a valid sport key returned zero records.
	ErrEmptyResult = eris.New("no records for sport")
)
