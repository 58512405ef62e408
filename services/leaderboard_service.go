package services

import (
	"context"
	"fmt"
	"sort"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// SeasonToDate selects the whole-season scope for leaderboard builds
const SeasonToDate = 0

// LeaderboardSource defines the read the aggregator needs. Week 0 means the
// whole season.
type LeaderboardSource interface {
	FindLeaderboardCandidates(ctx context.Context, season, week int) ([]*models.PickSet, error)
}

// LeaderboardService rolls authoritative, scored picks up into ranked season
// and weekly standings. Builds are pure reads: callers needing freshness
// rebuild rather than patch.
type LeaderboardService struct {
	pickSets LeaderboardSource
	logger   *logging.Logger
}

// NewLeaderboardService creates a new leaderboard aggregator
func NewLeaderboardService(pickSets LeaderboardSource) *LeaderboardService {
	return &LeaderboardService{
		pickSets: pickSets,
		logger:   logging.WithPrefix("Leaderboard"),
	}
}

// BuildWeeklyLeaderboard builds the standings for a single week. No rank
// deltas are computed for the weekly view.
func (s *LeaderboardService) BuildWeeklyLeaderboard(ctx context.Context, season, week int) ([]models.LeaderboardRow, error) {
	candidates, err := s.pickSets.FindLeaderboardCandidates(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard candidates: %w", err)
	}

	rows := buildRows(candidates, func(int) bool { return true })
	s.logger.Infof("Built weekly leaderboard for season %d week %d: %d row(s)", season, week, len(rows))
	return rows, nil
}

// BuildSeasonLeaderboard builds season-to-date standings through the given
// week (SeasonToDate for all weeks) and tags each row with its rank change
// versus the prior week's standings. A new entrant has no delta, not zero.
func (s *LeaderboardService) BuildSeasonLeaderboard(ctx context.Context, season, throughWeek int) ([]models.LeaderboardRow, error) {
	candidates, err := s.pickSets.FindLeaderboardCandidates(ctx, season, SeasonToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard candidates: %w", err)
	}

	if throughWeek == SeasonToDate {
		throughWeek = latestWeek(candidates)
	}

	current := buildRows(candidates, func(week int) bool { return week <= throughWeek })
	previous := buildRows(candidates, func(week int) bool { return week < throughWeek })

	previousRanks := make(map[int]int, len(previous))
	for _, row := range previous {
		previousRanks[row.UserID] = row.Rank
	}

	for i := range current {
		if prevRank, ok := previousRanks[current[i].UserID]; ok {
			change := prevRank - current[i].Rank // positive = improved
			current[i].RankChange = &change
		}
	}

	s.logger.Infof("Built season leaderboard for season %d through week %d: %d row(s)", season, throughWeek, len(current))
	return current, nil
}

// userTally accumulates one user's contributing picks during a build
type userTally struct {
	userID      int
	displayName string
	totalPoints int
	record      models.UserRecord
	lockRecord  models.UserRecord
	sawAuth     bool
	sawAnon     bool
}

// buildRows aggregates authoritative pick sets into ranked rows, keeping
// only weeks accepted by the filter
func buildRows(candidates []*models.PickSet, includeWeek func(int) bool) []models.LeaderboardRow {
	authoritative := selectAuthoritative(candidates, includeWeek)

	tallies := make(map[int]*userTally)
	for _, set := range authoritative {
		userID := set.OwnerUserID()
		tally, exists := tallies[userID]
		if !exists {
			tally = &userTally{userID: userID, displayName: set.DisplayName}
			tallies[userID] = tally
		}
		if tally.displayName == "" {
			tally.displayName = set.DisplayName
		}

		if set.IsAuthenticated {
			tally.sawAuth = true
		} else {
			tally.sawAnon = true
		}

		for i := range set.Picks {
			pick := &set.Picks[i]
			tally.totalPoints += pick.Points()
			tally.record.Add(pick.Result)
			if pick.IsLock {
				tally.lockRecord.Add(pick.Result)
			}
		}
	}

	rows := make([]models.LeaderboardRow, 0, len(tallies))
	for _, tally := range tallies {
		source := models.PickSourceAuthenticated
		switch {
		case tally.sawAuth && tally.sawAnon:
			source = models.PickSourceMixed
		case tally.sawAnon:
			source = models.PickSourceAnonymous
		}

		rows = append(rows, models.LeaderboardRow{
			UserID:      tally.userID,
			DisplayName: tally.displayName,
			TotalPoints: tally.totalPoints,
			Record:      tally.record,
			LockRecord:  tally.lockRecord,
			PickSource:  source,
		})
	}

	sortAndRank(rows)
	return rows
}

// selectAuthoritative picks one contributing set per (user, week).
// Authenticated submissions always outrank unresolved anonymous ones; within
// a class the most recent submission wins.
func selectAuthoritative(candidates []*models.PickSet, includeWeek func(int) bool) []*models.PickSet {
	chosen := make(map[string]*models.PickSet)

	for _, set := range candidates {
		userID := set.OwnerUserID()
		if userID == 0 || !includeWeek(set.Week) {
			continue
		}

		key := fmt.Sprintf("%d/%d", userID, set.Week)
		current, exists := chosen[key]
		if !exists || outranks(set, current) {
			chosen[key] = set
		}
	}

	result := make([]*models.PickSet, 0, len(chosen))
	for _, set := range chosen {
		result = append(result, set)
	}
	return result
}

// outranks reports whether candidate takes precedence over incumbent
func outranks(candidate, incumbent *models.PickSet) bool {
	if candidate.IsAuthenticated != incumbent.IsAuthenticated {
		return candidate.IsAuthenticated
	}
	return candidate.SubmittedAt.After(incumbent.SubmittedAt)
}

// sortAndRank orders rows by points descending and assigns competition
// ranks: tied totals share a rank and the next distinct total skips the tied
// count. Rank is derived by re-scanning for strictly higher point totals, so
// it stays correct even if a row's stored rank were inconsistent.
func sortAndRank(rows []models.LeaderboardRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].DisplayName != rows[j].DisplayName {
			return rows[i].DisplayName < rows[j].DisplayName
		}
		return rows[i].UserID < rows[j].UserID
	})

	for i := range rows {
		higher := 0
		for j := range rows {
			if rows[j].TotalPoints > rows[i].TotalPoints {
				higher++
			}
		}
		rows[i].Rank = higher + 1
	}
}

// latestWeek returns the highest week number among the candidate sets
func latestWeek(candidates []*models.PickSet) int {
	latest := 0
	for _, set := range candidates {
		if set.Week > latest {
			latest = set.Week
		}
	}
	return latest
}
