package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfb-pickem-go/models"
)

func rawPick(email string, gameID int, team string, submitted time.Time) models.Pick {
	return models.Pick{
		Email:        email,
		DisplayName:  "Picker",
		Season:       2025,
		Week:         3,
		GameID:       gameID,
		SelectedTeam: team,
		SubmittedAt:  submitted,
		Result:       models.PickResultPending,
	}
}

func TestGroupPicksMergesWithinSameMinute(t *testing.T) {
	// One form submission whose writes straddle 45 seconds
	first := time.Date(2025, 9, 20, 10, 15, 2, 0, time.UTC)
	later := time.Date(2025, 9, 20, 10, 15, 47, 0, time.UTC)

	records := []models.Pick{
		rawPick("fan@example.com", 1, "Alabama", first),
		rawPick("fan@example.com", 2, "Michigan", later),
		rawPick("fan@example.com", 3, "Georgia", later),
	}

	grouper := NewGrouperService()
	sets := grouper.GroupPicks(records, 3)

	require.Len(t, sets, 1)
	assert.Len(t, sets[0].Picks, 3)
	assert.Equal(t, time.Date(2025, 9, 20, 10, 15, 0, 0, time.UTC), sets[0].SubmittedAt)
	assert.Empty(t, sets[0].ProcessingNotes)
}

func TestGroupPicksSeparatesDistinctMinutes(t *testing.T) {
	morning := time.Date(2025, 9, 20, 10, 15, 30, 0, time.UTC)
	evening := time.Date(2025, 9, 20, 19, 42, 5, 0, time.UTC)

	records := []models.Pick{
		rawPick("fan@example.com", 1, "Alabama", morning),
		rawPick("fan@example.com", 1, "Georgia", evening),
	}

	grouper := NewGrouperService()
	sets := grouper.GroupPicks(records, 1)

	require.Len(t, sets, 2)
	assert.True(t, sets[0].SubmittedAt.Before(sets[1].SubmittedAt))
	assert.Equal(t, "Alabama", sets[0].Picks[0].SelectedTeam)
	assert.Equal(t, "Georgia", sets[1].Picks[0].SelectedTeam)
}

func TestGroupPicksSeparatesIdentities(t *testing.T) {
	at := time.Date(2025, 9, 20, 10, 15, 30, 0, time.UTC)

	alice := rawPick("alice@example.com", 1, "Alabama", at)
	bob := rawPick("bob@example.com", 1, "Georgia", at)
	authed := rawPick("alice@example.com", 1, "Alabama", at)
	authed.SubmitterUserID = 7

	grouper := NewGrouperService()
	sets := grouper.GroupPicks([]models.Pick{alice, bob, authed}, 1)

	require.Len(t, sets, 3)
	var authenticated int
	for _, set := range sets {
		if set.IsAuthenticated {
			authenticated++
			assert.Equal(t, 7, set.SubmitterUserID)
		}
	}
	assert.Equal(t, 1, authenticated)
}

func TestGroupPicksFlagsIncompleteSets(t *testing.T) {
	at := time.Date(2025, 9, 20, 10, 15, 0, 0, time.UTC)

	records := []models.Pick{
		rawPick("fan@example.com", 1, "Alabama", at),
		rawPick("fan@example.com", 2, "Michigan", at),
	}

	grouper := NewGrouperService()
	sets := grouper.GroupPicks(records, 6)

	require.Len(t, sets, 1)
	assert.False(t, sets[0].IsComplete(6))
	assert.Equal(t, "expected 6 picks, got 2", sets[0].ProcessingNotes)
	assert.Equal(t, models.ValidationPending, sets[0].ValidationStatus)
}

func TestGroupPicksDeterministicUnderPermutation(t *testing.T) {
	at1 := time.Date(2025, 9, 20, 10, 15, 0, 0, time.UTC)
	at2 := time.Date(2025, 9, 20, 10, 16, 0, 0, time.UTC)

	records := []models.Pick{
		rawPick("carol@example.com", 2, "Michigan", at2),
		rawPick("alice@example.com", 3, "Georgia", at1),
		rawPick("alice@example.com", 1, "Alabama", at1),
		rawPick("bob@example.com", 1, "Texas", at1),
	}
	reversed := []models.Pick{records[3], records[2], records[1], records[0]}

	grouper := NewGrouperService()
	forward := grouper.GroupPicks(records, 6)
	backward := grouper.GroupPicks(reversed, 6)

	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].IdentityKey(), backward[i].IdentityKey())
		assert.Equal(t, forward[i].SubmittedAt, backward[i].SubmittedAt)
		assert.Equal(t, forward[i].ContentSignature(), backward[i].ContentSignature())
	}

	// Within each set, picks come out ordered by game
	require.Len(t, forward[0].Picks, 2)
	assert.Equal(t, 1, forward[0].Picks[0].GameID)
	assert.Equal(t, 3, forward[0].Picks[1].GameID)
}
