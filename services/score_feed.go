package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cfb-pickem-go/models"
)

// ScoreFeedClient fetches game updates from the external scoreboard feed.
// It is the concrete ScoreSource used in production wiring.
type ScoreFeedClient struct {
	client  *http.Client
	baseURL string
}

// NewScoreFeedClient creates a new scoreboard feed client
func NewScoreFeedClient(baseURL string) *ScoreFeedClient {
	return &ScoreFeedClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// feedGame is the wire format of one game on the scoreboard feed
type feedGame struct {
	ID        int      `json:"id"`
	Season    int      `json:"season"`
	Week      int      `json:"week"`
	Date      string   `json:"date"`
	Away      string   `json:"away"`
	Home      string   `json:"home"`
	Status    string   `json:"status"` // "scheduled", "in_progress", "completed"
	AwayScore int      `json:"away_score"`
	HomeScore int      `json:"home_score"`
	Spread    *float64 `json:"spread,omitempty"`
}

// feedResponse is the scoreboard feed envelope
type feedResponse struct {
	Games []feedGame `json:"games"`
}

// FetchGames retrieves all games for a season from the feed
func (c *ScoreFeedClient) FetchGames(ctx context.Context, season int) ([]*models.Game, error) {
	url := fmt.Sprintf("%s/scoreboard?season=%d", c.baseURL, season)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoreboard request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoreboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard feed returned status %d", resp.StatusCode)
	}

	var payload feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard response: %w", err)
	}

	games := make([]*models.Game, 0, len(payload.Games))
	for _, fg := range payload.Games {
		games = append(games, convertFeedGame(fg))
	}
	return games, nil
}

// convertFeedGame maps a feed record to the internal game model
func convertFeedGame(fg feedGame) *models.Game {
	game := &models.Game{
		ID:        fg.ID,
		Season:    fg.Season,
		Week:      fg.Week,
		Away:      fg.Away,
		Home:      fg.Home,
		AwayScore: fg.AwayScore,
		HomeScore: fg.HomeScore,
	}

	switch fg.Status {
	case "completed", "final":
		game.State = models.GameStateCompleted
	case "in_progress", "live":
		game.State = models.GameStateInProgress
	default:
		game.State = models.GameStateScheduled
	}

	if date, err := time.Parse(time.RFC3339, fg.Date); err == nil {
		game.Date = date
	}

	if fg.Spread != nil {
		game.SetOdds(*fg.Spread)
	}

	return game
}
