package services

import (
	"context"
	"fmt"

	"cfb-pickem-go/database"
	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// Point values for against-the-spread results
const (
	PointsWin     = 20
	PointsLockWin = 40
	PointsPush    = 10
	PointsLoss    = 0
)

// PickResultWriter defines the pick set mutations the scoring engine needs
type PickResultWriter interface {
	ApplyGameResult(ctx context.Context, season, week int, update database.PickResultUpdate) (int64, error)
}

// ScoringService computes against-the-spread results and points for every
// pick on a completed game
type ScoringService struct {
	pickSetRepo PickResultWriter
	logger      *logging.Logger
}

// NewScoringService creates a new scoring service
func NewScoringService(pickSetRepo PickResultWriter) *ScoringService {
	return &ScoringService{
		pickSetRepo: pickSetRepo,
		logger:      logging.WithPrefix("Scoring"),
	}
}

// ScorePick returns the result and points for one pick on a game. It is a
// pure function of the game's final state and the pick's team and lock flag,
// so re-scoring an already-scored game reproduces the same values.
func ScorePick(game *models.Game, selectedTeam string, isLock bool) (models.PickResult, int) {
	outcome := game.SpreadResult()

	switch outcome {
	case models.SpreadOutcomePush:
		// Everyone pushes, lock or not
		return models.PickResultPush, PointsPush
	case models.SpreadOutcomeHomeCovered:
		if selectedTeam == game.Home {
			return models.PickResultWin, winPoints(isLock)
		}
		return models.PickResultLoss, PointsLoss
	case models.SpreadOutcomeAwayCovered:
		if selectedTeam == game.Away {
			return models.PickResultWin, winPoints(isLock)
		}
		return models.PickResultLoss, PointsLoss
	default:
		return models.PickResultPending, 0
	}
}

func winPoints(isLock bool) int {
	if isLock {
		return PointsLockWin
	}
	return PointsWin
}

// ScoreGame writes results and points onto every pick referencing the game.
// Calling it on a game that is not completed is a no-op, so repeated polling
// is harmless. Re-running on an already-scored game writes the same values.
func (s *ScoringService) ScoreGame(ctx context.Context, game *models.Game) error {
	if !game.IsCompleted() {
		s.logger.Debugf("Game %d (%s) not completed, skipping scoring", game.ID, game.Matchup())
		return nil
	}

	if !game.HasOdds() {
		// No line means no ATS result; picks stay pending until one is posted
		s.logger.Warnf("Game %d (%s) completed without a spread, picks left pending", game.ID, game.Matchup())
		return nil
	}

	outcome := game.SpreadResult()
	s.logger.Infof("Scoring game %d: %s (Final: %d-%d, spread %s, %s)",
		game.ID, game.Matchup(), game.AwayScore, game.HomeScore, game.FormatSpread(), outcome)

	updates := buildResultUpdates(game, outcome)

	for _, update := range updates {
		modified, err := s.pickSetRepo.ApplyGameResult(ctx, game.Season, game.Week, update)
		if err != nil {
			return fmt.Errorf("failed to score game %d: %w", game.ID, err)
		}
		s.logger.Debugf("Game %d: applied %s/%d points to %d pick set(s)",
			game.ID, update.Result, update.Points, modified)
	}

	return nil
}

// buildResultUpdates translates a spread outcome into the set of absolute
// writes that score every pick on the game
func buildResultUpdates(game *models.Game, outcome models.SpreadOutcome) []database.PickResultUpdate {
	if outcome == models.SpreadOutcomePush {
		return []database.PickResultUpdate{
			{GameID: game.ID, Result: models.PickResultPush, Points: PointsPush},
		}
	}

	winner := game.Home
	if outcome == models.SpreadOutcomeAwayCovered {
		winner = game.Away
	}

	lock := true
	regular := false
	return []database.PickResultUpdate{
		{GameID: game.ID, Team: winner, TeamMatches: true, Lock: &lock, Result: models.PickResultWin, Points: PointsLockWin},
		{GameID: game.ID, Team: winner, TeamMatches: true, Lock: &regular, Result: models.PickResultWin, Points: PointsWin},
		{GameID: game.ID, Team: winner, TeamMatches: false, Result: models.PickResultLoss, Points: PointsLoss},
	}
}

// ScoreWeek scores every completed game on a week's slate
func (s *ScoringService) ScoreWeek(ctx context.Context, games []*models.Game) error {
	scored := 0
	for _, game := range games {
		if !game.IsCompleted() {
			continue
		}
		if err := s.ScoreGame(ctx, game); err != nil {
			return err
		}
		scored++
	}
	s.logger.Infof("Scored %d completed game(s)", scored)
	return nil
}
