package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/odds-chat/internal/resilience"
)

func TestListSports(t *testing.T) {
	tests := []struct {
		name      string
		all       bool
		status    int
		body      string
		wantErr   string
		transient bool
		wantKeys  []string
	}{
		{
			name:   "success",
			all:    true,
			status: http.StatusOK,
			body: `[
				{"key":"basketball_nba","group":"Basketball","title":"NBA","description":"US Basketball","active":true,"has_outrights":false},
				{"key":"soccer_epl","group":"Soccer","title":"EPL","description":"Premier League","active":false,"has_outrights":false}
			]`,
			wantKeys: []string{"basketball_nba", "soccer_epl"},
		},
		{
			name:     "active_only",
			status:   http.StatusOK,
			body:     `[]`,
			wantKeys: []string{},
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"message":"API key is not valid"}`,
			wantErr: "unexpected status 401",
		},
		{
			name:      "quota_exhausted",
			status:    http.StatusTooManyRequests,
			body:      `{"message":"quota reached"}`,
			wantErr:   "unexpected status 429",
			transient: true,
		},
		{
			name:      "server_error",
			status:    http.StatusBadGateway,
			body:      `bad gateway`,
			wantErr:   "unexpected status 502",
			transient: true,
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/sports", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
				if tt.all {
					assert.Equal(t, "true", r.URL.Query().Get("all"))
				} else {
					assert.Empty(t, r.URL.Query().Get("all"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			sports, err := client.ListSports(context.Background(), tt.all)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.transient, resilience.IsTransient(err))
				return
			}
			require.NoError(t, err)
			keys := make([]string, 0, len(sports))
			for _, s := range sports {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestListSportsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"key":"cricket_test_match","group":"Cricket","title":"Test Matches","description":"International Test Matches","active":true,"has_outrights":true}]`))
	}))
	defer srv.Close()

	sports, err := NewClient("k", WithBaseURL(srv.URL)).ListSports(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, Sport{
		Key:          "cricket_test_match",
		Group:        "Cricket",
		Title:        "Test Matches",
		Description:  "International Test Matches",
		Active:       true,
		HasOutrights: true,
	}, sports[0])
}

func TestListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/basketball_nba/events", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"e1","sport_key":"basketball_nba","sport_title":"NBA","commence_time":"2026-01-02T00:00:00Z","home_team":"Boston Celtics","away_team":"Miami Heat"}
		]`))
	}))
	defer srv.Close()

	events, err := NewClient("k", WithBaseURL(srv.URL)).ListEvents(context.Background(), "basketball_nba")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Boston Celtics", events[0].HomeTeam)
	assert.Equal(t, "Miami Heat", events[0].AwayTeam)
	assert.True(t, events[0].CommenceTime.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestGetScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/icehockey_nhl/scores", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("daysFrom"))
		_, _ = w.Write([]byte(`[
			{"id":"s1","sport_key":"icehockey_nhl","commence_time":"2026-01-01T00:00:00Z","home_team":"Rangers","away_team":"Bruins",
			 "completed":true,"scores":[{"name":"Rangers","score":"3"},{"name":"Bruins","score":"2"}],"last_update":"2026-01-01T03:00:00Z"}
		]`))
	}))
	defer srv.Close()

	scores, err := NewClient("k", WithBaseURL(srv.URL)).GetScores(context.Background(), "icehockey_nhl", 1)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Completed)
	assert.Equal(t, "Rangers", scores[0].HomeTeam)
	require.Len(t, scores[0].Scores, 2)
	assert.Equal(t, "3", scores[0].Scores[0].Score)
	require.NotNil(t, scores[0].LastUpdate)
}

func TestGetOdds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/americanfootball_nfl/odds", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("regions"))
		assert.Equal(t, "h2h", r.URL.Query().Get("markets"))
		_, _ = w.Write([]byte(`[
			{"id":"o1","sport_key":"americanfootball_nfl","commence_time":"2026-01-05T18:00:00Z","home_team":"Bills","away_team":"Jets",
			 "bookmakers":[{"key":"fanduel","title":"FanDuel","last_update":"2026-01-04T10:00:00Z",
			   "markets":[{"key":"h2h","last_update":"2026-01-04T10:00:00Z","outcomes":[{"name":"Bills","price":1.5},{"name":"Jets","price":2.6}]}]}]}
		]`))
	}))
	defer srv.Close()

	odds, err := NewClient("k", WithBaseURL(srv.URL)).GetOdds(context.Background(), "americanfootball_nfl", "us", "h2h")
	require.NoError(t, err)
	require.Len(t, odds, 1)
	require.Len(t, odds[0].Bookmakers, 1)
	assert.Equal(t, "fanduel", odds[0].Bookmakers[0].Key)
	require.Len(t, odds[0].Bookmakers[0].Markets, 1)
	assert.InDelta(t, 2.6, odds[0].Bookmakers[0].Markets[0].Outcomes[1].Price, 0.0001)
	assert.Nil(t, odds[0].Bookmakers[0].Markets[0].Outcomes[0].Point)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := client.ListSports(context.Background(), true)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestContextCancelledIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := NewClient("k", WithBaseURL(srv.URL)).ListEvents(ctx, "soccer_epl")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.ListSports(context.Background(), false)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
	// Burst of 1 at 20/s spaces the 2nd and 3rd calls ~50ms apart.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
