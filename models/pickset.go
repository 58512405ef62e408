package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationStatus tracks where a pick set sits in the reconciliation pipeline
type ValidationStatus string

const (
	ValidationPending           ValidationStatus = "pending_validation"
	ValidationAutoValidated     ValidationStatus = "auto_validated"
	ValidationManuallyValidated ValidationStatus = "manually_validated"
	ValidationDuplicateConflict ValidationStatus = "duplicate_conflict"
)

// PickSet is the logical group of picks one submitter made for one week.
// It is stored as a single document so assignment updates apply atomically.
type PickSet struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmitterUserID   int                `bson:"submitter_user_id" json:"submitter_user_id"` // 0 for anonymous submissions
	Email             string             `bson:"email" json:"email"`
	DisplayName       string             `bson:"display_name" json:"display_name"`
	Season            int                `bson:"season" json:"season"`
	Week              int                `bson:"week" json:"week"`
	SubmittedAt       time.Time          `bson:"submitted_at" json:"submitted_at"` // rounded down to the minute
	Picks             []Pick             `bson:"picks" json:"picks"`
	IsAuthenticated   bool               `bson:"is_authenticated" json:"is_authenticated"`
	AssignedUserID    *int               `bson:"assigned_user_id,omitempty" json:"assigned_user_id,omitempty"`
	ShowOnLeaderboard bool               `bson:"show_on_leaderboard" json:"show_on_leaderboard"`
	ValidationStatus  ValidationStatus   `bson:"validation_status" json:"validation_status"`
	ProcessingNotes   string             `bson:"processing_notes,omitempty" json:"processing_notes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// IdentityKey returns the grouping key for the set's submitter identity
func (ps *PickSet) IdentityKey() string {
	if ps.SubmitterUserID != 0 {
		return fmt.Sprintf("user:%d", ps.SubmitterUserID)
	}
	return "email:" + strings.ToLower(ps.Email)
}

// OwnerUserID returns the user the set counts for: the assigned user if an
// admin or the resolver recorded one, otherwise the authenticated submitter.
// Returns 0 for unassigned anonymous sets.
func (ps *PickSet) OwnerUserID() int {
	if ps.AssignedUserID != nil {
		return *ps.AssignedUserID
	}
	return ps.SubmitterUserID
}

// ContentSignature derives the canonical signature for duplicate detection:
// picks ordered by game ID, each rendered as "gameID:team:LOCK|REG", joined
// with "|". Two sets with equal signatures are content-duplicates regardless
// of who submitted them.
func (ps *PickSet) ContentSignature() string {
	ordered := make([]Pick, len(ps.Picks))
	copy(ordered, ps.Picks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].GameID < ordered[j].GameID })

	parts := make([]string, 0, len(ordered))
	for _, pick := range ordered {
		tag := "REG"
		if pick.IsLock {
			tag = "LOCK"
		}
		parts = append(parts, fmt.Sprintf("%d:%s:%s", pick.GameID, pick.SelectedTeam, tag))
	}
	return strings.Join(parts, "|")
}

// IsComplete returns true if the set contains exactly the number of picks
// configured for the week
func (ps *PickSet) IsComplete(gameCount int) bool {
	return len(ps.Picks) == gameCount
}

// TotalPoints sums earned points across the set's scored picks
func (ps *PickSet) TotalPoints() int {
	total := 0
	for i := range ps.Picks {
		total += ps.Picks[i].Points()
	}
	return total
}

// Record tallies the W-L-P record across the set's scored picks
func (ps *PickSet) Record() UserRecord {
	var record UserRecord
	for i := range ps.Picks {
		record.Add(ps.Picks[i].Result)
	}
	return record
}

// LockPick returns the set's lock pick, or nil if none was designated.
// By convention a set carries at most one lock.
func (ps *PickSet) LockPick() *Pick {
	for i := range ps.Picks {
		if ps.Picks[i].IsLock {
			return &ps.Picks[i]
		}
	}
	return nil
}
