package handlers

import (
	"net/http"

	"cfb-pickem-go/services"
)

// LeaderboardHandler exposes the ranked standings. Consumers must not assume
// rank is contiguous: ties produce gaps by design.
type LeaderboardHandler struct {
	leaderboard   *services.LeaderboardService
	currentSeason int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard *services.LeaderboardService, currentSeason int) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard:   leaderboard,
		currentSeason: currentSeason,
	}
}

// GetLeaderboard handles GET /leaderboard?season=&week=
// Without a week parameter the season-to-date view is returned, with rank
// changes versus the prior week's standings.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	season := queryInt(r, "season", h.currentSeason)
	week := queryInt(r, "week", services.SeasonToDate)

	var rows interface{}
	var err error
	if week == services.SeasonToDate {
		rows, err = h.leaderboard.BuildSeasonLeaderboard(r.Context(), season, services.SeasonToDate)
	} else {
		rows, err = h.leaderboard.BuildWeeklyLeaderboard(r.Context(), season, week)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rows)
}
