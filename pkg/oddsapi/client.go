// Package oddsapi is a client for The Odds API v4 sports data endpoints.
package oddsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/odds-chat/internal/resilience"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com/v4"
	defaultTimeout = 10 * time.Second
)

// Client reads the sports catalog and per-sport data from the provider.
type Client interface {
	ListSports(ctx context.Context, all bool) ([]Sport, error)
	ListEvents(ctx context.Context, sportKey string) ([]Event, error)
	GetScores(ctx context.Context, sportKey string, daysFrom int) ([]Score, error)
	GetOdds(ctx context.Context, sportKey, regions, markets string) ([]EventOdds, error)
}

// Sport is one entry of GET /sports.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Event is a scheduled fixture from GET /sports/{sport}/events.
type Event struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// TeamScore is a team's current or final score. The provider sends the
// score as a string.
type TeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// Score is an event from GET /sports/{sport}/scores.
type Score struct {
	Event
	Completed  bool        `json:"completed"`
	Scores     []TeamScore `json:"scores"`
	LastUpdate *time.Time  `json:"last_update"`
}

// Outcome is one priced selection within a market.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// Market is a bookmaker's market, e.g. "h2h".
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Bookmaker groups the markets offered by one bookmaker.
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// EventOdds is an event from GET /sports/{sport}/odds.
type EventOdds struct {
	Event
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Odds API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListSports(ctx context.Context, all bool) ([]Sport, error) {
	q := url.Values{}
	if all {
		q.Set("all", "true")
	}
	var out []Sport
	if err := c.get(ctx, "/sports", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListEvents(ctx context.Context, sportKey string) ([]Event, error) {
	var out []Event
	if err := c.get(ctx, "/sports/"+url.PathEscape(sportKey)+"/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) GetScores(ctx context.Context, sportKey string, daysFrom int) ([]Score, error) {
	q := url.Values{}
	if daysFrom > 0 {
		q.Set("daysFrom", strconv.Itoa(daysFrom))
	}
	var out []Score
	if err := c.get(ctx, "/sports/"+url.PathEscape(sportKey)+"/scores", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) GetOdds(ctx context.Context, sportKey, regions, markets string) ([]EventOdds, error) {
	q := url.Values{}
	q.Set("regions", regions)
	q.Set("markets", markets)
	var out []EventOdds
	if err := c.get(ctx, "/sports/"+url.PathEscape(sportKey)+"/odds", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "oddsapi: rate limit wait")
		}
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "oddsapi: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return eris.Wrap(err, "oddsapi: send request")
		}
		return eris.Wrap(resilience.NewTransientError(err, 0), "oddsapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "oddsapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("oddsapi: unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
		if resilience.IsTransientStatus(resp.StatusCode) {
			return resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return statusErr
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return eris.Wrap(err, "oddsapi: unmarshal response")
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
