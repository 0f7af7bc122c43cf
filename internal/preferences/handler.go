package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/internal/tenancy"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// Handler serves GET and PUT /preferences for the authenticated coach.
type Handler struct {
	store     Store
	logger    *logging.Logger
	touchGoal int
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger, touchGoal: prospects.DefaultTouchGoal}
}

// WithTouchGoalFallback sets the goal used when the coach has not saved one.
func (h *Handler) WithTouchGoalFallback(goal int) *Handler {
	if goal > 0 {
		h.touchGoal = goal
	}
	return h
}

// Get handles GET /preferences.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.Get(r.Context(), tenancy.CoachIDOrDefault(r.Context()))
	if err != nil {
		h.logger.Error("failed to load preferences", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// Put handles PUT /preferences.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}
	saved, err := h.store.Save(r.Context(), tenancy.CoachIDOrDefault(r.Context()), prefs)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, saved)
	case isValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("failed to save preferences", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// QueryDefaults returns the saved view of the coach in ctx; errors fall back to the defaults.
func (h *Handler) QueryDefaults(ctx context.Context) prospects.Query {
	prefs, err := h.store.Get(ctx, tenancy.CoachIDOrDefault(ctx))
	if err != nil {
		h.logger.Warn("preferences unavailable, using defaults", "error", err)
		return Default().Query()
	}
	return prefs.Query()
}

// TouchGoal returns the saved daily goal of the coach in ctx, or the fallback.
func (h *Handler) TouchGoal(ctx context.Context) int {
	prefs, err := h.store.Get(ctx, tenancy.CoachIDOrDefault(ctx))
	if err != nil {
		h.logger.Warn("preferences unavailable, using default touch goal", "error", err)
		return h.touchGoal
	}
	if prefs.TouchGoal > 0 {
		return prefs.TouchGoal
	}
	return h.touchGoal
}

func isValidation(err error) bool {
	return errors.Is(err, ErrInvalidTouchGoal) ||
		errors.Is(err, prospects.ErrInvalidStatus) ||
		errors.Is(err, prospects.ErrInvalidPriority) ||
		errors.Is(err, prospects.ErrInvalidSort)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
