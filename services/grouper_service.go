package services

import (
	"fmt"
	"sort"
	"time"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// GrouperService clusters raw pick records into pick sets. A single form
// submission issues one write per pick; rounding the submission time down to
// the minute absorbs clock and network skew across those writes without
// merging genuinely separate submissions, which land minutes apart.
type GrouperService struct {
	logger *logging.Logger
}

// NewGrouperService creates a new pick set grouper
func NewGrouperService() *GrouperService {
	return &GrouperService{logger: logging.WithPrefix("Grouper")}
}

// GroupPicks folds raw pick records for one season/week into pick sets keyed
// by (submitter identity, minute-rounded submission time). A set whose pick
// count differs from the week's game count is retained but flagged for admin
// attention, never silently trusted or dropped.
func (s *GrouperService) GroupPicks(records []models.Pick, expectedGames int) []*models.PickSet {
	groups := make(map[string]*models.PickSet)

	for _, record := range records {
		minute := record.SubmittedAt.UTC().Truncate(time.Minute)
		key := record.IdentityKey() + "@" + minute.Format(time.RFC3339)

		set, exists := groups[key]
		if !exists {
			set = &models.PickSet{
				SubmitterUserID:  record.SubmitterUserID,
				Email:            record.Email,
				DisplayName:      record.DisplayName,
				Season:           record.Season,
				Week:             record.Week,
				SubmittedAt:      minute,
				IsAuthenticated:  record.SubmitterUserID != 0,
				ValidationStatus: models.ValidationPending,
			}
			groups[key] = set
		}
		set.Picks = append(set.Picks, record)
	}

	sets := make([]*models.PickSet, 0, len(groups))
	for _, set := range groups {
		// Keep the set's picks in a stable order for signatures and display
		sort.Slice(set.Picks, func(i, j int) bool {
			return set.Picks[i].GameID < set.Picks[j].GameID
		})

		if !set.IsComplete(expectedGames) {
			set.ProcessingNotes = fmt.Sprintf("expected %d picks, got %d", expectedGames, len(set.Picks))
			s.logger.Warnf("Flagged pick set from %s (%s): %s",
				set.Email, set.SubmittedAt.Format(time.RFC3339), set.ProcessingNotes)
		}

		sets = append(sets, set)
	}

	// Deterministic output order regardless of input permutation
	sort.Slice(sets, func(i, j int) bool {
		if !sets[i].SubmittedAt.Equal(sets[j].SubmittedAt) {
			return sets[i].SubmittedAt.Before(sets[j].SubmittedAt)
		}
		return sets[i].IdentityKey() < sets[j].IdentityKey()
	})

	s.logger.Infof("Grouped %d pick record(s) into %d pick set(s)", len(records), len(sets))
	return sets
}
