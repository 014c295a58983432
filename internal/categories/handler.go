package categories

import (
	"errors"
	"log/slog"
	"net/http"

	"notrello/internal/auth"
	"notrello/internal/respond"
)

const maxBody = 16 << 10

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// List handles GET /api/custom-cat
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	list, err := h.svc.List(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Category{}
	}
	respond.JSON(w, list, http.StatusOK)
}

// Create handles POST /api/custom-cat
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var input CreateInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), id.UserID, input)
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to create category", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, c, http.StatusCreated)
}

// Update handles PATCH /api/custom-cat/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var input UpdateInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), id.UserID, r.PathValue("id"), input)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		respond.Error(w, "category not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("failed to update category", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, c, http.StatusOK)
}

// Delete handles DELETE /api/custom-cat/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	err := h.svc.Delete(r.Context(), id.UserID, r.PathValue("id"))
	if errors.Is(err, ErrCategoryNotFound) {
		respond.Error(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to delete category", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
