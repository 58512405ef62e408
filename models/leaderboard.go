package models

// PickSource indicates where a user's authoritative picks came from over the
// scope being rendered
type PickSource string

const (
	PickSourceAuthenticated PickSource = "authenticated"
	PickSourceAnonymous     PickSource = "anonymous"
	PickSourceMixed         PickSource = "mixed"
)

// LeaderboardRow is one user's standing, recomputed on demand from the full
// set of authoritative scored picks. Never hand-edited.
type LeaderboardRow struct {
	Rank        int        `json:"rank"`
	UserID      int        `json:"user_id"`
	DisplayName string     `json:"display_name"`
	TotalPoints int        `json:"total_points"`
	Record      UserRecord `json:"record"`
	LockRecord  UserRecord `json:"lock_record"`
	RankChange  *int       `json:"rank_change,omitempty"` // nil for new entrants; positive = improved
	PickSource  PickSource `json:"pick_source"`
}

// IsTiedWith returns true if the other row shares this row's point total.
// Tie membership is judged on points, not the rank field, so display stays
// correct even if an upstream rank is inconsistent.
func (r *LeaderboardRow) IsTiedWith(other *LeaderboardRow) bool {
	return r.TotalPoints == other.TotalPoints
}
