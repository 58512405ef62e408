package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentSignatureOrderIndependence(t *testing.T) {
	a := &PickSet{Picks: []Pick{
		{GameID: 3, SelectedTeam: "Georgia", IsLock: true},
		{GameID: 1, SelectedTeam: "Alabama"},
		{GameID: 2, SelectedTeam: "Ohio State"},
	}}
	b := &PickSet{Picks: []Pick{
		{GameID: 2, SelectedTeam: "Ohio State"},
		{GameID: 3, SelectedTeam: "Georgia", IsLock: true},
		{GameID: 1, SelectedTeam: "Alabama"},
	}}

	assert.Equal(t, a.ContentSignature(), b.ContentSignature())
	assert.Equal(t, "1:Alabama:REG|2:Ohio State:REG|3:Georgia:LOCK", a.ContentSignature())
}

func TestContentSignatureDistinguishesLockAndTeam(t *testing.T) {
	base := &PickSet{Picks: []Pick{{GameID: 1, SelectedTeam: "Alabama"}}}
	locked := &PickSet{Picks: []Pick{{GameID: 1, SelectedTeam: "Alabama", IsLock: true}}}
	other := &PickSet{Picks: []Pick{{GameID: 1, SelectedTeam: "Georgia"}}}

	assert.NotEqual(t, base.ContentSignature(), locked.ContentSignature())
	assert.NotEqual(t, base.ContentSignature(), other.ContentSignature())
}

func TestPickSetCompleteness(t *testing.T) {
	set := &PickSet{Picks: make([]Pick, 5)}

	assert.False(t, set.IsComplete(6))
	assert.True(t, set.IsComplete(5))
}

func TestPickSetTotalsAndRecord(t *testing.T) {
	win := 20
	lockWin := 40
	push := 10
	loss := 0

	set := &PickSet{Picks: []Pick{
		{GameID: 1, Result: PickResultWin, PointsEarned: &win},
		{GameID: 2, Result: PickResultWin, IsLock: true, PointsEarned: &lockWin},
		{GameID: 3, Result: PickResultPush, PointsEarned: &push},
		{GameID: 4, Result: PickResultLoss, PointsEarned: &loss},
		{GameID: 5, Result: PickResultPending},
	}}

	assert.Equal(t, 70, set.TotalPoints())

	record := set.Record()
	assert.Equal(t, "2-1-1", record.String())

	lock := set.LockPick()
	assert.NotNil(t, lock)
	assert.Equal(t, 2, lock.GameID)
}

func TestOwnerUserIDPrefersAssignment(t *testing.T) {
	assigned := 7
	set := &PickSet{SubmitterUserID: 3}
	assert.Equal(t, 3, set.OwnerUserID())

	set.AssignedUserID = &assigned
	assert.Equal(t, 7, set.OwnerUserID())

	anon := &PickSet{Email: "a@x.com"}
	assert.Equal(t, 0, anon.OwnerUserID())
}

func TestIdentityKey(t *testing.T) {
	authed := &Pick{SubmitterUserID: 12, Email: "a@x.com"}
	anon := &Pick{Email: "A@X.COM"}

	assert.Equal(t, "user:12", authed.IdentityKey())
	assert.Equal(t, "email:a@x.com", anon.IdentityKey())

	set := &PickSet{Email: "A@X.com", SubmittedAt: time.Now()}
	assert.Equal(t, "email:a@x.com", set.IdentityKey())
}
