package prospects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// Handler exposes the Store over JSON HTTP.
type Handler struct {
	store     *Store
	logger    *logging.Logger
	defaults  func(ctx context.Context) Query
	touchGoal func(ctx context.Context) int
}

// NewHandler creates a new prospects handler
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// WithQueryDefaults supplies the view used for list parameters the request leaves empty.
func (h *Handler) WithQueryDefaults(fn func(ctx context.Context) Query) *Handler {
	h.defaults = fn
	return h
}

// WithTouchGoalDefault supplies the daily goal used when the request has no goal.
func (h *Handler) WithTouchGoalDefault(fn func(ctx context.Context) int) *Handler {
	h.touchGoal = fn
	return h
}

// Routes mounts the prospect endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/touches", h.Touches)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/contacts", h.LogContact)
		r.Post("/advance", h.Advance)
		r.Get("/timeline", h.Timeline)
	})
	return r
}

// ListResponse is the body of GET /prospects.
type ListResponse struct {
	Rows        []Row     `json:"rows"`
	Stats       Stats     `json:"stats"`
	Query       Query     `json:"query"`
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// GET /prospects?status=&priority=&q=&sort=&dir=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := QueryFromValues(r.URL.Query())
	if h.defaults != nil {
		q = q.WithDefaults(h.defaults(r.Context()))
	}
	q, err := q.Normalize()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.store.View(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Rows:        view.Rows,
		Stats:       view.Stats,
		Query:       view.Query,
		Count:       len(view.Rows),
		LastUpdated: h.store.Clock().Now().UTC(),
	})
}

// QueryFromValues reads a view query from status, priority, q, sort and dir parameters.
func QueryFromValues(v url.Values) Query {
	return Query{
		Status:   v.Get("status"),
		Priority: v.Get("priority"),
		Search:   v.Get("q"),
		Sort:     SortKey(v.Get("sort")),
		Dir:      SortDir(v.Get("dir")),
	}
}

// POST /prospects
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.store.Add(r.Context(), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GET /prospects/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Tally(records, h.store.Today()))
}

// GET /prospects/touches?day=YYYY-MM-DD&goal=100&days=14
func (h *Handler) Touches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	day, err := ParseDate(query.Get("day"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	goal, _ := strconv.Atoi(query.Get("goal"))
	if goal <= 0 && h.touchGoal != nil {
		goal = h.touchGoal(r.Context())
	}
	days, _ := strconv.Atoi(query.Get("days"))
	if days > 90 {
		days = 90
	}
	report, err := h.store.Touches(r.Context(), day, goal, days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /prospects/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Derive(p, h.store.Today()))
}

// PUT /prospects/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var record Prospect
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), record)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DELETE /prospects/{id}?confirm=true
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id, confirmed); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// POST /prospects/{id}/contacts
func (h *Handler) LogContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.store.LogContact(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /prospects/{id}/advance
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.AdvanceStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /prospects/{id}/timeline
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.Timeline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// StatusCode maps store errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrProspectNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTerminalStatus):
		return http.StatusConflict
	case errors.Is(err, ErrDeleteNotConfirmed):
		return http.StatusPreconditionRequired
	case isValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("prospects request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
