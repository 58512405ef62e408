package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pick represents one submitter's selection for one game.
// Raw picks arrive one row per form write; the grouper folds them into pick sets.
type Pick struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmitterUserID int                `bson:"submitter_user_id" json:"submitter_user_id"` // 0 for anonymous submissions
	Email           string             `bson:"email" json:"email"`
	DisplayName     string             `bson:"display_name" json:"display_name"`
	Season          int                `bson:"season" json:"season"`
	Week            int                `bson:"week" json:"week"`
	GameID          int                `bson:"game_id" json:"game_id"`
	SelectedTeam    string             `bson:"selected_team" json:"selected_team"`
	IsLock          bool               `bson:"is_lock" json:"is_lock"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
	Result          PickResult         `bson:"result" json:"result"`
	PointsEarned    *int               `bson:"points_earned,omitempty" json:"points_earned,omitempty"` // nil until the game is scored
}

// PickResult represents the outcome of a pick
type PickResult string

const (
	PickResultPending PickResult = "pending"
	PickResultWin     PickResult = "win"
	PickResultLoss    PickResult = "loss"
	PickResultPush    PickResult = "push"
)

// IsAuthenticated returns true if the pick was submitted by a logged-in user
func (p *Pick) IsAuthenticated() bool {
	return p.SubmitterUserID != 0
}

// IsScored returns true if the pick has a final result
func (p *Pick) IsScored() bool {
	return p.Result != PickResultPending && p.Result != ""
}

// Points returns the earned points, or 0 if the pick has not been scored yet
func (p *Pick) Points() int {
	if p.PointsEarned == nil {
		return 0
	}
	return *p.PointsEarned
}

// IdentityKey returns the grouping key for the submitter identity.
// Authenticated submitters key on user ID; anonymous ones on lowercased email.
func (p *Pick) IdentityKey() string {
	if p.SubmitterUserID != 0 {
		return fmt.Sprintf("user:%d", p.SubmitterUserID)
	}
	return "email:" + strings.ToLower(p.Email)
}

// UserRecord represents a win-loss-push record
type UserRecord struct {
	Wins   int `json:"wins" bson:"wins"`
	Losses int `json:"losses" bson:"losses"`
	Pushes int `json:"pushes" bson:"pushes"`
}

// Add tallies one pick result into the record. Pending picks are ignored.
func (r *UserRecord) Add(result PickResult) {
	switch result {
	case PickResultWin:
		r.Wins++
	case PickResultLoss:
		r.Losses++
	case PickResultPush:
		r.Pushes++
	}
}

// String returns the record in "W-L-P" format
func (r *UserRecord) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Pushes)
}

// GetWinPercentage calculates win percentage (pushes count as 0.5)
func (r *UserRecord) GetWinPercentage() float64 {
	total := r.Wins + r.Losses + r.Pushes
	if total == 0 {
		return 0.0
	}
	return (float64(r.Wins) + float64(r.Pushes)*0.5) / float64(total)
}
