package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cfb-pickem-go/database"
	"cfb-pickem-go/models"
	"cfb-pickem-go/services"
)

var errPickSetNotFound = errors.New("pick set not found")

// AdminHandler exposes the reconciliation surface: grouping, duplicate
// reports, and conflict resolution
type AdminHandler struct {
	pickService   *services.PickService
	duplicates    *services.DuplicateService
	resolver      *services.ConflictResolver
	pickSetRepo   *database.MongoPickSetRepository
	currentSeason int
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	pickService *services.PickService,
	duplicates *services.DuplicateService,
	resolver *services.ConflictResolver,
	pickSetRepo *database.MongoPickSetRepository,
	currentSeason int,
) *AdminHandler {
	return &AdminHandler{
		pickService:   pickService,
		duplicates:    duplicates,
		resolver:      resolver,
		pickSetRepo:   pickSetRepo,
		currentSeason: currentSeason,
	}
}

// GroupPicks handles POST /admin/group?season=&week= — folds the week's raw
// picks into stored pick sets
func (h *AdminHandler) GroupPicks(w http.ResponseWriter, r *http.Request) {
	season := queryInt(r, "season", h.currentSeason)
	week := queryInt(r, "week", 0)
	if week == 0 {
		writeError(w, http.StatusBadRequest, "week is required")
		return
	}

	sets, err := h.pickService.BuildPickSets(r.Context(), season, week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sets)
}

// GetDuplicates handles GET /admin/duplicates?season=&week= — runs a
// detection pass over the week's stored pick sets
func (h *AdminHandler) GetDuplicates(w http.ResponseWriter, r *http.Request) {
	season := queryInt(r, "season", h.currentSeason)
	week := queryInt(r, "week", 0)
	if week == 0 {
		writeError(w, http.StatusBadRequest, "week is required")
		return
	}

	sets, err := h.pickService.GetPickSets(r.Context(), season, week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.duplicates.DetectDuplicates(sets))
}

// resolveRequest is the body for POST /admin/resolve
type resolveRequest struct {
	PickSetID    string `json:"pick_set_id"`
	TargetUserID int    `json:"target_user_id"`
	Mode         string `json:"mode"` // "auto" or "manual"
}

// Resolve handles POST /admin/resolve — assigns a pick set to a user,
// returning the conflict payload instead of mutating when manual mode finds
// existing sets
func (h *AdminHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := services.ResolutionMode(req.Mode)
	if mode != services.ResolutionAuto && mode != services.ResolutionManual {
		writeError(w, http.StatusBadRequest, "mode must be auto or manual")
		return
	}

	set, err := h.loadPickSet(r, req.PickSetID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	outcome, err := h.resolver.ResolveAssignment(r.Context(), set, req.TargetUserID, mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// choiceRequest is the body for POST /admin/resolve/choice
type choiceRequest struct {
	ChosenID     string   `json:"chosen_id"`
	RejectedIDs  []string `json:"rejected_ids"`
	TargetUserID int      `json:"target_user_id"`
}

// ApplyChoice handles POST /admin/resolve/choice — records an admin's
// keep-new/keep-existing decision between conflicting sets
func (h *AdminHandler) ApplyChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chosen, err := h.loadPickSet(r, req.ChosenID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	rejected := make([]*models.PickSet, 0, len(req.RejectedIDs))
	for _, id := range req.RejectedIDs {
		set, err := h.loadPickSet(r, id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		rejected = append(rejected, set)
	}

	outcome, err := h.resolver.ApplyManualChoice(r.Context(), chosen, rejected, req.TargetUserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// loadPickSet fetches a pick set by its hex ID
func (h *AdminHandler) loadPickSet(r *http.Request, hexID string) (*models.PickSet, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, err
	}

	set, err := h.pickSetRepo.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, errPickSetNotFound
	}
	return set, nil
}
