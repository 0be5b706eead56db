package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/providers"
	"nba-totals-service/internal/timeutil"
)

// Config controls how the ESPN client reaches the upstream site API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timezone   string
}

// Client fetches games and teams from the ESPN site API and maps them to
// domain models.
type Client struct {
	baseURL    string
	httpClient httpDoer
	now        func() time.Time
	loc        *time.Location
}

// NewClient constructs an ESPN client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
		loc:        resolveLocation(cfg.Timezone),
	}
}

// FetchGames retrieves the scoreboard for the given YYYYMMDD date key. An
// empty date means "today" in the client's configured timezone.
func (c *Client) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	date = c.resolveDate(date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scoreboard", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("dates", date)
	req.URL.RawQuery = q.Encode()

	var payload scoreboardResponse
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}

	games := make([]domain.Game, 0, len(payload.Events))
	for _, event := range payload.Events {
		game, ok := mapGame(event, date)
		if !ok {
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// FetchTeams retrieves the league team directory.
func (c *Client) FetchTeams(ctx context.Context) ([]domain.Team, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/teams", nil)
	if err != nil {
		return nil, err
	}

	var payload teamsResponse
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}

	var teams []domain.Team
	for _, sport := range payload.Sports {
		for _, league := range sport.Leagues {
			for _, entry := range league.Teams {
				teams = append(teams, mapTeam(entry.Team))
			}
		}
	}
	return teams, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("espn: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) resolveDate(date string) string {
	if date != "" {
		if _, err := timeutil.ParseDateKey(date); err == nil {
			return date
		}
	}
	return timeutil.FormatDateKey(c.now().In(c.loc))
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw + "s"); err == nil && d > 0 {
		return d
	}
	return 0
}
