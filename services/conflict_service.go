package services

import (
	"context"
	"fmt"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// ResolutionMode selects how assignment conflicts are handled
type ResolutionMode string

const (
	ResolutionAuto   ResolutionMode = "auto"
	ResolutionManual ResolutionMode = "manual"
)

// PickSetStore defines the pick set operations the resolver needs
type PickSetStore interface {
	FindForUser(ctx context.Context, userID, season, week int) ([]*models.PickSet, error)
	UpdateAssignment(ctx context.Context, set *models.PickSet) error
}

// EligibilityChecker looks up payment eligibility for leaderboard visibility
type EligibilityChecker interface {
	IsPaid(ctx context.Context, userID, season int) (bool, error)
}

// AssignmentOutcome describes what the resolver did (or declined to do) with
// a pick set. Conflicts and eligibility failures are expected states, not
// errors; the caller decides whether to retry or escalate to a human.
type AssignmentOutcome struct {
	Assigned          bool                    `json:"assigned"`
	HasConflicts      bool                    `json:"has_conflicts"`
	Conflicts         []*models.PickSet       `json:"conflicts,omitempty"` // full sets with picks, results, and points
	ShowOnLeaderboard bool                    `json:"show_on_leaderboard"`
	ValidationStatus  models.ValidationStatus `json:"validation_status"`
	Note              string                  `json:"note,omitempty"`
	EligibilityError  string                  `json:"eligibility_error,omitempty"` // lookup failure surfaced for retry
}

// ConflictResolver assigns pick sets to users and arbitrates duplicate or
// conflicting submissions for the same user and week. It is the only
// component that mutates a set's assignment and visibility.
type ConflictResolver struct {
	pickSets    PickSetStore
	eligibility EligibilityChecker
	logger      *logging.Logger

	// Policy: whether a flagged short/long set may still auto-assign
	gamesPerWeek              int
	allowIncompleteAutoAssign bool
}

// NewConflictResolver creates a new conflict resolver
func NewConflictResolver(pickSets PickSetStore, eligibility EligibilityChecker, gamesPerWeek int, allowIncompleteAutoAssign bool) *ConflictResolver {
	return &ConflictResolver{
		pickSets:                  pickSets,
		eligibility:               eligibility,
		logger:                    logging.WithPrefix("Resolver"),
		gamesPerWeek:              gamesPerWeek,
		allowIncompleteAutoAssign: allowIncompleteAutoAssign,
	}
}

// ResolveAssignment assigns a pick set to a target user, arbitrating against
// any existing authoritative sets for the same season/week. Existing sets are
// re-fetched immediately before mutating so two interleaved attempts cannot
// both see an empty field. The assignment write covers the whole set in one
// operation; a failure means nothing was applied and the caller retries the
// set as a unit.
func (r *ConflictResolver) ResolveAssignment(ctx context.Context, set *models.PickSet, targetUserID int, mode ResolutionMode) (*AssignmentOutcome, error) {
	if mode == ResolutionAuto && !set.IsComplete(r.gamesPerWeek) && !r.allowIncompleteAutoAssign {
		r.logger.Warnf("Pick set %s has %d pick(s), expected %d; refusing auto-assignment",
			set.ID.Hex(), len(set.Picks), r.gamesPerWeek)
		return &AssignmentOutcome{
			Assigned:         false,
			ValidationStatus: models.ValidationPending,
			Note:             fmt.Sprintf("incomplete pick set (%d of %d picks) needs manual review", len(set.Picks), r.gamesPerWeek),
		}, nil
	}

	existing, err := r.existingSetsFor(ctx, set, targetUserID)
	if err != nil {
		// No conflict data available: refuse to guess, let the caller retry
		return nil, fmt.Errorf("failed to check existing pick sets for user %d: %w", targetUserID, err)
	}

	if len(existing) == 0 {
		return r.assignClean(ctx, set, targetUserID, mode)
	}

	if mode == ResolutionManual {
		// No mutation: hand the full conflict payload back for human choice
		r.logger.Infof("Pick set %s conflicts with %d existing set(s) for user %d; awaiting manual choice",
			set.ID.Hex(), len(existing), targetUserID)
		return &AssignmentOutcome{
			Assigned:         false,
			HasConflicts:     true,
			Conflicts:        existing,
			ValidationStatus: models.ValidationDuplicateConflict,
			Note:             fmt.Sprintf("user %d already has %d pick set(s) for week %d", targetUserID, len(existing), set.Week),
		}, nil
	}

	// Auto mode: assignment still proceeds. Authenticated submissions outrank
	// anonymous ones at read time, so the duplicate's presence is not fatal
	// and no other row's visibility needs mutating here.
	set.AssignedUserID = &targetUserID
	set.ValidationStatus = models.ValidationAutoValidated
	set.ProcessingNotes = fmt.Sprintf("auto-assigned with %d conflicting set(s); precedence resolved at read time", len(existing))

	if err := r.pickSets.UpdateAssignment(ctx, set); err != nil {
		return nil, fmt.Errorf("assignment of pick set %s failed, retry the whole set: %w", set.ID.Hex(), err)
	}

	return &AssignmentOutcome{
		Assigned:          true,
		HasConflicts:      true,
		Conflicts:         existing,
		ShowOnLeaderboard: set.ShowOnLeaderboard,
		ValidationStatus:  set.ValidationStatus,
		Note:              set.ProcessingNotes,
	}, nil
}

// assignClean handles the no-conflict path: assign, then gate leaderboard
// visibility on payment eligibility. A failed eligibility lookup never shows
// the set optimistically; it defaults to hidden and surfaces the failure.
func (r *ConflictResolver) assignClean(ctx context.Context, set *models.PickSet, targetUserID int, mode ResolutionMode) (*AssignmentOutcome, error) {
	visible := false
	eligibilityErr := ""

	paid, err := r.eligibility.IsPaid(ctx, targetUserID, set.Season)
	if err != nil {
		eligibilityErr = err.Error()
		r.logger.Errorf("Eligibility lookup failed for user %d, defaulting to hidden: %v", targetUserID, err)
	} else {
		visible = paid
	}

	set.AssignedUserID = &targetUserID
	set.ShowOnLeaderboard = visible
	set.ValidationStatus = models.ValidationAutoValidated
	if mode == ResolutionManual {
		set.ValidationStatus = models.ValidationManuallyValidated
	}
	set.ProcessingNotes = ""
	if !visible && eligibilityErr == "" {
		set.ProcessingNotes = fmt.Sprintf("user %d not payment-eligible for season %d, hidden from leaderboard", targetUserID, set.Season)
	}

	if err := r.pickSets.UpdateAssignment(ctx, set); err != nil {
		return nil, fmt.Errorf("assignment of pick set %s failed, retry the whole set: %w", set.ID.Hex(), err)
	}

	r.logger.Infof("Assigned pick set %s to user %d (visible=%t, status=%s)",
		set.ID.Hex(), targetUserID, visible, set.ValidationStatus)

	return &AssignmentOutcome{
		Assigned:          true,
		ShowOnLeaderboard: visible,
		ValidationStatus:  set.ValidationStatus,
		Note:              set.ProcessingNotes,
		EligibilityError:  eligibilityErr,
	}, nil
}

// ApplyManualChoice applies an admin's decision between conflicting sets.
// The chosen set becomes the visible one (subject to payment eligibility);
// every rejected set keeps its identity assignment so it is not re-offered
// as unassigned, but its visibility is forced false.
func (r *ConflictResolver) ApplyManualChoice(ctx context.Context, chosen *models.PickSet, rejected []*models.PickSet, targetUserID int) (*AssignmentOutcome, error) {
	visible := false
	eligibilityErr := ""

	paid, err := r.eligibility.IsPaid(ctx, targetUserID, chosen.Season)
	if err != nil {
		eligibilityErr = err.Error()
		r.logger.Errorf("Eligibility lookup failed for user %d, defaulting to hidden: %v", targetUserID, err)
	} else {
		visible = paid
	}

	chosen.AssignedUserID = &targetUserID
	chosen.ShowOnLeaderboard = visible
	chosen.ValidationStatus = models.ValidationManuallyValidated
	chosen.ProcessingNotes = "chosen by admin over conflicting submission(s)"

	if err := r.pickSets.UpdateAssignment(ctx, chosen); err != nil {
		return nil, fmt.Errorf("assignment of chosen pick set %s failed, retry the whole set: %w", chosen.ID.Hex(), err)
	}

	for _, loser := range rejected {
		loser.AssignedUserID = &targetUserID
		loser.ShowOnLeaderboard = false
		loser.ValidationStatus = models.ValidationDuplicateConflict
		loser.ProcessingNotes = "superseded by admin choice"

		if err := r.pickSets.UpdateAssignment(ctx, loser); err != nil {
			return nil, fmt.Errorf("demotion of pick set %s failed, retry the whole choice: %w", loser.ID.Hex(), err)
		}
	}

	r.logger.Infof("Manual choice applied for user %d: kept %s, demoted %d set(s)",
		targetUserID, chosen.ID.Hex(), len(rejected))

	return &AssignmentOutcome{
		Assigned:          true,
		ShowOnLeaderboard: visible,
		ValidationStatus:  chosen.ValidationStatus,
		Note:              chosen.ProcessingNotes,
		EligibilityError:  eligibilityErr,
	}, nil
}

// existingSetsFor fetches the user's authoritative sets for the same week,
// excluding the set being resolved
func (r *ConflictResolver) existingSetsFor(ctx context.Context, set *models.PickSet, targetUserID int) ([]*models.PickSet, error) {
	found, err := r.pickSets.FindForUser(ctx, targetUserID, set.Season, set.Week)
	if err != nil {
		return nil, err
	}

	existing := make([]*models.PickSet, 0, len(found))
	for _, other := range found {
		if other.ID == set.ID {
			continue
		}
		existing = append(existing, other)
	}
	return existing, nil
}
