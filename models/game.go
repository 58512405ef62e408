package models

import (
	"fmt"
	"time"
)

// GameState represents the current state of a game
type GameState string

const (
	GameStateScheduled  GameState = "scheduled"
	GameStateInProgress GameState = "in_progress"
	GameStateCompleted  GameState = "completed"
)

// Odds represents the betting line for a game
type Odds struct {
	Spread float64 `json:"spread" bson:"spread"` // Point spread relative to the home team (negative = home favored)
}

// Game represents a college football game with scores and metadata.
// Scores and state are written by the score-ingestion side; the scoring
// engine only reads them.
type Game struct {
	ID        int       `json:"id" bson:"id"`
	Season    int       `json:"season" bson:"season"`
	Week      int       `json:"week" bson:"week"`
	Date      time.Time `json:"date" bson:"date"`
	Away      string    `json:"away" bson:"away"`
	Home      string    `json:"home" bson:"home"`
	State     GameState `json:"state" bson:"state"`
	AwayScore int       `json:"awayScore" bson:"awayScore"`
	HomeScore int       `json:"homeScore" bson:"homeScore"`
	Odds      *Odds     `json:"odds,omitempty" bson:"odds,omitempty"` // nil if no line was posted
}

// SpreadOutcome is the against-the-spread outcome of a completed game
type SpreadOutcome string

const (
	SpreadOutcomeHomeCovered SpreadOutcome = "home_covered"
	SpreadOutcomeAwayCovered SpreadOutcome = "away_covered"
	SpreadOutcomePush        SpreadOutcome = "push"
	SpreadOutcomeUnknown     SpreadOutcome = "" // not completed or no line
)

// IsCompleted returns true if the game is finished
func (g *Game) IsCompleted() bool {
	return g.State == GameStateCompleted
}

// IsInProgress returns true if the game is currently being played
func (g *Game) IsInProgress() bool {
	return g.State == GameStateInProgress
}

// HasOdds returns true if a betting line is available
func (g *Game) HasOdds() bool {
	return g.Odds != nil
}

// roundToHalf rounds a float to the nearest 0.5 increment
func roundToHalf(val float64) float64 {
	if val < 0 {
		return -float64(int(-val*2+0.5)) / 2
	}
	return float64(int(val*2+0.5)) / 2
}

// SetOdds sets the betting line for the game with sanitization
func (g *Game) SetOdds(spread float64) {
	g.Odds = &Odds{Spread: roundToHalf(spread)}
}

// HomeATS returns the home team's spread-adjusted score. The spread always
// adjusts the home score, whichever side a picker chose.
func (g *Game) HomeATS() float64 {
	return float64(g.HomeScore) + g.Odds.Spread
}

// SpreadResult returns the against-the-spread outcome of the game.
// SpreadOutcomeUnknown is returned when the game is not completed or has
// no line, so callers can skip scoring rather than guess.
func (g *Game) SpreadResult() SpreadOutcome {
	if !g.HasOdds() || !g.IsCompleted() {
		return SpreadOutcomeUnknown
	}

	homeATS := g.HomeATS()
	awayATS := float64(g.AwayScore)

	switch {
	case homeATS > awayATS:
		return SpreadOutcomeHomeCovered
	case awayATS > homeATS:
		return SpreadOutcomeAwayCovered
	default:
		return SpreadOutcomePush
	}
}

// FormatSpread returns a formatted string for the spread
func (g *Game) FormatSpread() string {
	if !g.HasOdds() {
		return ""
	}

	if g.Odds.Spread > 0 {
		return fmt.Sprintf("+%.1f", g.Odds.Spread)
	} else if g.Odds.Spread < 0 {
		return fmt.Sprintf("%.1f", g.Odds.Spread)
	}
	return "PK" // Pick 'em
}

// Matchup returns a short "AWAY @ HOME" description
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.Away, g.Home)
}
