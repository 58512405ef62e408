package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cfb-pickem-go/models"
)

type fakePickSetStore struct {
	existing  []*models.PickSet
	findErr   error
	updateErr error
	updated   []*models.PickSet
	findCalls int
}

func (f *fakePickSetStore) FindForUser(_ context.Context, _, _, _ int) ([]*models.PickSet, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.existing, nil
}

func (f *fakePickSetStore) UpdateAssignment(_ context.Context, set *models.PickSet) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, set)
	return nil
}

type fakeEligibility struct {
	paid map[int]bool
	err  error
}

func (f *fakeEligibility) IsPaid(_ context.Context, userID, _ int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.paid[userID], nil
}

func completeSet(picks int) *models.PickSet {
	set := &models.PickSet{
		ID:          primitive.NewObjectID(),
		Email:       "fan@example.com",
		Season:      2025,
		Week:        3,
		SubmittedAt: time.Date(2025, 9, 20, 10, 15, 0, 0, time.UTC),
	}
	for i := 0; i < picks; i++ {
		set.Picks = append(set.Picks, models.Pick{GameID: i + 1, SelectedTeam: "Alabama"})
	}
	return set
}

func newResolver(store *fakePickSetStore, elig *fakeEligibility) *ConflictResolver {
	return NewConflictResolver(store, elig, 6, false)
}

func TestResolveAssignmentCleanPaidUser(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	assert.False(t, outcome.HasConflicts)
	assert.True(t, outcome.ShowOnLeaderboard)
	assert.Equal(t, models.ValidationAutoValidated, outcome.ValidationStatus)
	require.NotNil(t, set.AssignedUserID)
	assert.Equal(t, 7, *set.AssignedUserID)
	require.Len(t, store.updated, 1)
}

func TestResolveAssignmentUnpaidUserHidden(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{}})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	assert.False(t, outcome.ShowOnLeaderboard)
	assert.Empty(t, outcome.EligibilityError)
	assert.Contains(t, outcome.Note, "not payment-eligible")
	assert.False(t, set.ShowOnLeaderboard)
}

func TestResolveAssignmentEligibilityLookupFailure(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{err: errors.New("payments collection unreachable")})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	// Assignment still lands; visibility defaults to hidden with the failure surfaced
	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	assert.False(t, outcome.ShowOnLeaderboard)
	assert.Equal(t, "payments collection unreachable", outcome.EligibilityError)
	require.Len(t, store.updated, 1)
}

func TestResolveAssignmentManualValidatedStatus(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	outcome, err := resolver.ResolveAssignment(context.Background(), completeSet(6), 7, ResolutionManual)

	require.NoError(t, err)
	assert.Equal(t, models.ValidationManuallyValidated, outcome.ValidationStatus)
}

func TestResolveAssignmentRefusesIncompleteAuto(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	set := completeSet(4)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.NoError(t, err)
	assert.False(t, outcome.Assigned)
	assert.Contains(t, outcome.Note, "manual review")
	assert.Nil(t, set.AssignedUserID)
	assert.Empty(t, store.updated)
	// The short-circuit happens before any store traffic
	assert.Equal(t, 0, store.findCalls)
}

func TestResolveAssignmentIncompleteManualProceeds(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	outcome, err := resolver.ResolveAssignment(context.Background(), completeSet(4), 7, ResolutionManual)

	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
}

func TestResolveAssignmentManualConflictNoMutation(t *testing.T) {
	prior := completeSet(6)
	store := &fakePickSetStore{existing: []*models.PickSet{prior}}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionManual)

	require.NoError(t, err)
	assert.False(t, outcome.Assigned)
	assert.True(t, outcome.HasConflicts)
	require.Len(t, outcome.Conflicts, 1)
	assert.Same(t, prior, outcome.Conflicts[0])
	assert.Equal(t, models.ValidationDuplicateConflict, outcome.ValidationStatus)
	assert.Nil(t, set.AssignedUserID)
	assert.Empty(t, store.updated)
}

func TestResolveAssignmentAutoConflictStillAssigns(t *testing.T) {
	prior := completeSet(6)
	store := &fakePickSetStore{existing: []*models.PickSet{prior}}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	assert.True(t, outcome.HasConflicts)
	require.NotNil(t, set.AssignedUserID)
	assert.Equal(t, 7, *set.AssignedUserID)
	require.Len(t, store.updated, 1)
}

func TestResolveAssignmentExcludesSelfFromConflicts(t *testing.T) {
	set := completeSet(6)
	store := &fakePickSetStore{existing: []*models.PickSet{set}}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.NoError(t, err)
	assert.False(t, outcome.HasConflicts)
	assert.Empty(t, outcome.Conflicts)
}

func TestResolveAssignmentFindFailureRefusesToGuess(t *testing.T) {
	store := &fakePickSetStore{findErr: errors.New("cursor timeout")}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	set := completeSet(6)
	outcome, err := resolver.ResolveAssignment(context.Background(), set, 7, ResolutionAuto)

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Nil(t, set.AssignedUserID)
	assert.Empty(t, store.updated)
}

func TestResolveAssignmentWriteFailureIsRetryable(t *testing.T) {
	store := &fakePickSetStore{updateErr: errors.New("write concern failure")}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	_, err := resolver.ResolveAssignment(context.Background(), completeSet(6), 7, ResolutionAuto)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry the whole set")
}

func TestApplyManualChoice(t *testing.T) {
	store := &fakePickSetStore{}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	chosen := completeSet(6)
	loserA := completeSet(6)
	loserB := completeSet(6)

	outcome, err := resolver.ApplyManualChoice(context.Background(), chosen, []*models.PickSet{loserA, loserB}, 7)

	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	assert.True(t, outcome.ShowOnLeaderboard)
	assert.Equal(t, models.ValidationManuallyValidated, chosen.ValidationStatus)
	assert.True(t, chosen.ShowOnLeaderboard)

	for _, loser := range []*models.PickSet{loserA, loserB} {
		require.NotNil(t, loser.AssignedUserID)
		assert.Equal(t, 7, *loser.AssignedUserID)
		assert.False(t, loser.ShowOnLeaderboard)
		assert.Equal(t, models.ValidationDuplicateConflict, loser.ValidationStatus)
	}
	assert.Len(t, store.updated, 3)
}

func TestApplyManualChoiceWriteFailure(t *testing.T) {
	store := &fakePickSetStore{updateErr: errors.New("write concern failure")}
	resolver := newResolver(store, &fakeEligibility{paid: map[int]bool{7: true}})

	_, err := resolver.ApplyManualChoice(context.Background(), completeSet(6), nil, 7)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry the whole set")
}
