package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfb-pickem-go/database"
	"cfb-pickem-go/models"
)

// fakeResultWriter applies result updates to an in-memory pick list the way
// the pick set repository applies them to stored documents
type fakeResultWriter struct {
	picks   []models.Pick
	applied []database.PickResultUpdate
	failErr error
}

func (f *fakeResultWriter) ApplyGameResult(_ context.Context, _, _ int, update database.PickResultUpdate) (int64, error) {
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.applied = append(f.applied, update)

	var modified int64
	for i := range f.picks {
		pick := &f.picks[i]
		if pick.GameID != update.GameID {
			continue
		}
		if update.Team != "" {
			matches := pick.SelectedTeam == update.Team
			if matches != update.TeamMatches {
				continue
			}
		}
		if update.Lock != nil && pick.IsLock != *update.Lock {
			continue
		}
		points := update.Points
		pick.Result = update.Result
		pick.PointsEarned = &points
		modified++
	}
	return modified, nil
}

func newCompletedGame(home, away string, homeScore, awayScore int, spread float64) *models.Game {
	g := &models.Game{
		ID:        101,
		Season:    2025,
		Week:      1,
		Home:      home,
		Away:      away,
		HomeScore: homeScore,
		AwayScore: awayScore,
		State:     models.GameStateCompleted,
	}
	g.SetOdds(spread)
	return g
}

func TestScorePickTable(t *testing.T) {
	// Alabama favored by 3.5, wins by 3: Georgia covers
	game := newCompletedGame("Alabama", "Georgia", 24, 21, -3.5)

	tests := []struct {
		name       string
		team       string
		isLock     bool
		wantResult models.PickResult
		wantPoints int
	}{
		{"winning lock pick", "Georgia", true, models.PickResultWin, 40},
		{"winning regular pick", "Georgia", false, models.PickResultWin, 20},
		{"losing lock pick", "Alabama", true, models.PickResultLoss, 0},
		{"losing regular pick", "Alabama", false, models.PickResultLoss, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, points := ScorePick(game, tt.team, tt.isLock)
			assert.Equal(t, tt.wantResult, result)
			assert.Equal(t, tt.wantPoints, points)
		})
	}
}

func TestScorePickPushIgnoresTeamAndLock(t *testing.T) {
	game := newCompletedGame("Michigan", "Ohio State", 24, 21, -3)

	for _, team := range []string{"Michigan", "Ohio State"} {
		for _, isLock := range []bool{true, false} {
			result, points := ScorePick(game, team, isLock)
			assert.Equal(t, models.PickResultPush, result)
			assert.Equal(t, 10, points)
		}
	}
}

func TestScorePickPendingWhenNotCompleted(t *testing.T) {
	game := newCompletedGame("Alabama", "Georgia", 24, 21, -3.5)
	game.State = models.GameStateInProgress

	result, points := ScorePick(game, "Georgia", true)
	assert.Equal(t, models.PickResultPending, result)
	assert.Equal(t, 0, points)
}

func TestScoreGameWritesAllPicks(t *testing.T) {
	game := newCompletedGame("Alabama", "Georgia", 24, 21, -3.5)
	writer := &fakeResultWriter{picks: []models.Pick{
		{GameID: 101, SelectedTeam: "Georgia", IsLock: true},
		{GameID: 101, SelectedTeam: "Georgia"},
		{GameID: 101, SelectedTeam: "Alabama", IsLock: true},
		{GameID: 202, SelectedTeam: "Texas"}, // different game, untouched
	}}

	setService := NewScoringService(writer)
	require.NoError(t, setService.ScoreGame(context.Background(), game))

	assert.Equal(t, models.PickResultWin, writer.picks[0].Result)
	assert.Equal(t, 40, *writer.picks[0].PointsEarned)
	assert.Equal(t, models.PickResultWin, writer.picks[1].Result)
	assert.Equal(t, 20, *writer.picks[1].PointsEarned)
	assert.Equal(t, models.PickResultLoss, writer.picks[2].Result)
	assert.Equal(t, 0, *writer.picks[2].PointsEarned)
	assert.Equal(t, models.PickResultPending, writer.picks[3].Result)
	assert.Nil(t, writer.picks[3].PointsEarned)
}

func TestScoreGameIdempotent(t *testing.T) {
	game := newCompletedGame("Alabama", "Georgia", 24, 21, -3.5)
	writer := &fakeResultWriter{picks: []models.Pick{
		{GameID: 101, SelectedTeam: "Georgia", IsLock: true},
		{GameID: 101, SelectedTeam: "Alabama"},
	}}

	setService := NewScoringService(writer)
	require.NoError(t, setService.ScoreGame(context.Background(), game))

	first := make([]models.Pick, len(writer.picks))
	copy(first, writer.picks)

	require.NoError(t, setService.ScoreGame(context.Background(), game))

	for i := range writer.picks {
		assert.Equal(t, first[i].Result, writer.picks[i].Result)
		assert.Equal(t, *first[i].PointsEarned, *writer.picks[i].PointsEarned)
	}
}

func TestScoreGameNoOpOnIncompleteOrLineless(t *testing.T) {
	writer := &fakeResultWriter{}
	setService := NewScoringService(writer)

	scheduled := newCompletedGame("Alabama", "Georgia", 0, 0, -3.5)
	scheduled.State = models.GameStateScheduled
	require.NoError(t, setService.ScoreGame(context.Background(), scheduled))
	assert.Empty(t, writer.applied)

	noLine := &models.Game{ID: 101, State: models.GameStateCompleted, Home: "Alabama", Away: "Georgia"}
	require.NoError(t, setService.ScoreGame(context.Background(), noLine))
	assert.Empty(t, writer.applied)
}

func TestScoreGamePushScoresEveryPickTen(t *testing.T) {
	game := newCompletedGame("Michigan", "Ohio State", 24, 21, -3)
	writer := &fakeResultWriter{picks: []models.Pick{
		{GameID: 101, SelectedTeam: "Michigan", IsLock: true},
		{GameID: 101, SelectedTeam: "Ohio State"},
	}}

	setService := NewScoringService(writer)
	require.NoError(t, setService.ScoreGame(context.Background(), game))

	for i := range writer.picks {
		assert.Equal(t, models.PickResultPush, writer.picks[i].Result)
		assert.Equal(t, 10, *writer.picks[i].PointsEarned)
	}
}
