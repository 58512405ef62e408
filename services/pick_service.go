package services

import (
	"context"
	"fmt"
	"time"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// RawPickStore defines the raw pick operations the pick service needs
type RawPickStore interface {
	CreateMany(ctx context.Context, picks []*models.Pick) error
	FindByWeek(ctx context.Context, season, week int) ([]models.Pick, error)
}

// PickSetWriter persists grouped pick sets
type PickSetWriter interface {
	Upsert(ctx context.Context, set *models.PickSet) error
	FindByWeek(ctx context.Context, season, week int) ([]*models.PickSet, error)
}

// GameCounter reports how many games are on a week's slate
type GameCounter interface {
	CountByWeek(ctx context.Context, season, week int) (int, error)
}

// PickService accepts raw pick submissions and turns a week's worth of them
// into persisted pick sets via the grouper
type PickService struct {
	picks    RawPickStore
	pickSets PickSetWriter
	games    GameCounter
	grouper  *GrouperService
	logger   *logging.Logger

	// Fallback slate size when the week has no games loaded yet
	defaultGamesPerWeek int
}

// NewPickService creates a new pick service
func NewPickService(picks RawPickStore, pickSets PickSetWriter, games GameCounter, grouper *GrouperService, defaultGamesPerWeek int) *PickService {
	return &PickService{
		picks:               picks,
		pickSets:            pickSets,
		games:               games,
		grouper:             grouper,
		logger:              logging.WithPrefix("PickService"),
		defaultGamesPerWeek: defaultGamesPerWeek,
	}
}

// SubmitPicks stores a batch of raw pick records as they arrive. Grouping
// into pick sets happens separately so multi-request form submits can land
// before reconciliation runs.
func (s *PickService) SubmitPicks(ctx context.Context, picks []*models.Pick) error {
	now := time.Now()
	for _, pick := range picks {
		if pick.SubmittedAt.IsZero() {
			pick.SubmittedAt = now
		}
		if pick.Result == "" {
			pick.Result = models.PickResultPending
		}
	}

	if err := s.picks.CreateMany(ctx, picks); err != nil {
		return fmt.Errorf("failed to store submitted picks: %w", err)
	}

	s.logger.Infof("Stored %d submitted pick(s)", len(picks))
	return nil
}

// BuildPickSets groups the week's raw picks into pick sets and persists
// them. Re-running is safe: sets upsert on their identity and submission
// minute, so an unchanged group rewrites the same document.
func (s *PickService) BuildPickSets(ctx context.Context, season, week int) ([]*models.PickSet, error) {
	records, err := s.picks.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load raw picks: %w", err)
	}

	expected, err := s.games.CountByWeek(ctx, season, week)
	if err != nil || expected == 0 {
		if err != nil {
			s.logger.Warnf("Could not count games for week %d, using default slate size %d: %v", week, s.defaultGamesPerWeek, err)
		}
		expected = s.defaultGamesPerWeek
	}

	sets := s.grouper.GroupPicks(records, expected)
	for _, set := range sets {
		if err := s.pickSets.Upsert(ctx, set); err != nil {
			return nil, fmt.Errorf("failed to persist pick set for %s: %w", set.Email, err)
		}
	}

	return sets, nil
}

// GetPickSets returns the stored pick sets for a week
func (s *PickService) GetPickSets(ctx context.Context, season, week int) ([]*models.PickSet, error) {
	return s.pickSets.FindByWeek(ctx, season, week)
}
