package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completedGame(home, away string, homeScore, awayScore int, spread float64) *Game {
	g := &Game{
		ID:        1,
		Home:      home,
		Away:      away,
		HomeScore: homeScore,
		AwayScore: awayScore,
		State:     GameStateCompleted,
	}
	g.SetOdds(spread)
	return g
}

func TestSpreadResultFavoriteFailsToCover(t *testing.T) {
	// Alabama favored by 3.5 wins by only 3: homeATS 20.5 vs awayATS 21
	g := completedGame("Alabama", "Georgia", 24, 21, -3.5)

	assert.Equal(t, SpreadOutcomeAwayCovered, g.SpreadResult())
}

func TestSpreadResultFavoriteCovers(t *testing.T) {
	g := completedGame("Alabama", "Georgia", 28, 21, -3.5)

	assert.Equal(t, SpreadOutcomeHomeCovered, g.SpreadResult())
}

func TestSpreadResultPush(t *testing.T) {
	// homeScore + spread == awayScore is a push
	g := completedGame("Michigan", "Ohio State", 24, 21, -3)

	assert.Equal(t, SpreadOutcomePush, g.SpreadResult())
}

func TestSpreadResultUnknownStates(t *testing.T) {
	g := completedGame("Alabama", "Georgia", 24, 21, -3.5)
	g.State = GameStateInProgress
	assert.Equal(t, SpreadOutcomeUnknown, g.SpreadResult())

	noLine := &Game{Home: "Alabama", Away: "Georgia", HomeScore: 24, AwayScore: 21, State: GameStateCompleted}
	assert.Equal(t, SpreadOutcomeUnknown, noLine.SpreadResult())
}

func TestSetOddsSanitizesToHalfPoint(t *testing.T) {
	g := &Game{}
	g.SetOdds(-3.3)
	assert.Equal(t, -3.5, g.Odds.Spread)

	g.SetOdds(7.1)
	assert.Equal(t, 7.0, g.Odds.Spread)
}

func TestFormatSpread(t *testing.T) {
	g := &Game{}
	assert.Equal(t, "", g.FormatSpread())

	g.SetOdds(-3.5)
	assert.Equal(t, "-3.5", g.FormatSpread())

	g.SetOdds(0)
	assert.Equal(t, "PK", g.FormatSpread())
}
