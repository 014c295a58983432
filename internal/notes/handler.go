package notes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"notrello/internal/auth"
	"notrello/internal/respond"
)

const maxBody = 256 << 10

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Create handles POST /api/notes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var input CreateInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.Create(r.Context(), id.UserID, input)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	respond.JSON(w, note, http.StatusCreated)
}

// Get handles GET /api/notes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	note, err := h.svc.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	respond.JSON(w, note, http.StatusOK)
}

// List handles GET /api/notes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	q := ListQuery{
		Card:   r.URL.Query().Get("carte"),
		Limit:  respond.ParseInt(r.URL.Query().Get("limit"), 50),
		Offset: respond.ParseInt(r.URL.Query().Get("offset"), 0),
	}

	notes, err := h.svc.List(r.Context(), id.UserID, q)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if notes == nil {
		notes = []*Note{}
	}
	respond.JSON(w, notes, http.StatusOK)
}

// Search handles GET /api/notes/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	q := SearchQuery{
		Query:  r.URL.Query().Get("q"),
		Card:   r.URL.Query().Get("carte"),
		Since:  parseDate(r.URL.Query().Get("since")),
		Until:  parseDate(r.URL.Query().Get("until")),
		Limit:  respond.ParseInt(r.URL.Query().Get("limit"), 50),
		Offset: respond.ParseInt(r.URL.Query().Get("offset"), 0),
	}

	notes, err := h.svc.Search(r.Context(), id.UserID, q)
	if err != nil {
		h.fail(w, "search", err)
		return
	}
	if notes == nil {
		notes = []*Note{}
	}
	respond.JSON(w, notes, http.StatusOK)
}

// Update handles PATCH /api/notes/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var input UpdateInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.Update(r.Context(), id.UserID, r.PathValue("id"), input)
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	respond.JSON(w, note, http.StatusOK)
}

// Delete handles DELETE /api/notes/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	if err := h.svc.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		h.fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		respond.Error(w, "note not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("failed to "+op+" note", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// parseDate accepts RFC 3339 or a bare YYYY-MM-DD; anything else is no
// filter.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	if err != nil {
		return nil
	}
	return &t
}
