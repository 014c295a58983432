package cards

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"notrello/internal/auth"
	"notrello/internal/respond"
)

const maxBody = 64 << 10

type Handler struct {
	svc            *Service
	importMaxBytes int64
	log            *slog.Logger
}

func NewHandler(svc *Service, importMaxBytes int64, log *slog.Logger) *Handler {
	return &Handler{svc: svc, importMaxBytes: importMaxBytes, log: log}
}

// List handles GET /api/cartes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	q := ListQuery{
		Date: r.URL.Query().Get("date"),
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	list, err := h.svc.List(r.Context(), id.UserID, q)
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to list cards", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Card{}
	}
	respond.JSON(w, map[string][]*Card{"cartes": list}, http.StatusOK)
}

// Create handles POST /api/cartes
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
		h.log.Error("failed to create card", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, map[string]*Card{"carte": c}, http.StatusCreated)
}

// Get handles GET /api/cartes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	c, err := h.svc.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		h.fail(w, "get card", err)
		return
	}
	respond.JSON(w, map[string]*Card{"carte": c}, http.StatusOK)
}

// Update handles PATCH /api/cartes/{id}. The body is JSON or a form.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	input, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Update(r.Context(), id.UserID, r.PathValue("id"), input)
	if err != nil {
		h.fail(w, "update card", err)
		return
	}
	respond.JSON(w, map[string]*Card{"carte": c}, http.StatusOK)
}

// Delete handles DELETE /api/cartes/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	if err := h.svc.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		h.fail(w, "delete card", err)
		return
	}
	respond.JSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// BulkDelete handles POST and DELETE /api/cartes/bulk-delete
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := respond.Decode(w, r, &body, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	n, err := h.svc.BulkDelete(r.Context(), id.UserID, body.IDs)
	if errors.Is(err, ErrForbidden) {
		respond.Error(w, "some cards do not exist or belong to another user", http.StatusForbidden)
		return
	}
	if err != nil {
		h.fail(w, "bulk delete cards", err)
		return
	}
	respond.JSON(w, map[string]any{"success": true, "deleted": n}, http.StatusOK)
}

// Move handles POST /api/cartes/{id}/move
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var body struct {
		Slot string `json:"slot"`
	}
	if err := respond.Decode(w, r, &body, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Move(r.Context(), id.UserID, r.PathValue("id"), body.Slot)
	if err != nil {
		h.fail(w, "move card", err)
		return
	}
	if res.Moved {
		h.log.Debug("card moved", "card", res.Card.ID.Hex(), "start", res.Card.StartTime, "end", res.Card.EndTime)
	}
	respond.JSON(w, res, http.StatusOK)
}

// Import handles POST /api/calendar/import. It takes either parsed events
// as JSON, an .ics file in the "file" field of a multipart form, or the raw
// .ics text as the body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.importMaxBytes)

	var (
		res *ImportResult
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req ImportRequest
		if err := respond.Decode(w, r, &req, h.importMaxBytes); err != nil {
			h.badUpload(w, err, "invalid JSON body")
			return
		}
		res, err = h.svc.ImportEvents(r.Context(), id.UserID, req.Events, req.Category)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.importMaxBytes); err != nil {
			h.badUpload(w, err, "invalid form")
			return
		}
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			respond.Error(w, "file field is required", http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, rerr := io.ReadAll(file)
		if rerr != nil {
			h.badUpload(w, rerr, "could not read file")
			return
		}
		res, err = h.svc.ImportICS(r.Context(), id.UserID, string(content), r.FormValue("category"))

	default:
		content, rerr := io.ReadAll(r.Body)
		if rerr != nil {
			h.badUpload(w, rerr, "could not read body")
			return
		}
		res, err = h.svc.ImportICS(r.Context(), id.UserID, string(content), r.URL.Query().Get("category"))
	}

	if errors.Is(err, ErrNoEvents) {
		respond.Error(w, ErrNoEvents.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.fail(w, "import calendar", err)
		return
	}
	h.log.Info("calendar imported", "user", id.UserID.Hex(), "imported", res.Imported, "skipped", res.Skipped, "errors", len(res.Errors))
	respond.JSON(w, res, http.StatusOK)
}

// Export handles GET /api/calendar/export.ics
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	body, err := h.svc.Export(r.Context(), id.UserID, "Notrello - "+id.Pseudo)
	if err != nil {
		h.fail(w, "export calendar", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="notrello.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		h.log.Debug("failed to write calendar export", "error", err)
	}
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrCardNotFound):
		respond.Error(w, "card not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		respond.Error(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("failed to "+action, "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) badUpload(w http.ResponseWriter, err error, msg string) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		respond.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}
	respond.Error(w, msg, http.StatusBadRequest)
}

func (h *Handler) decodeUpdate(w http.ResponseWriter, r *http.Request) (UpdateInput, bool) {
	var input UpdateInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "", "application/json":
		if err := respond.Decode(w, r, &input, maxBody); err != nil {
			respond.Error(w, "invalid JSON body", http.StatusBadRequest)
			return input, false
		}
	case "multipart/form-data", "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBody)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			respond.Error(w, "invalid form", http.StatusBadRequest)
			return input, false
		}
		input = UpdateInput{
			Title:       formField(r, "title"),
			Description: formField(r, "description"),
			Category:    formField(r, "category"),
			StartTime:   formField(r, "startTime"),
			EndTime:     formField(r, "endTime"),
			Date:        formField(r, "date"),
		}
	default:
		respond.Error(w, "unsupported content type", http.StatusBadRequest)
		return input, false
	}
	return input, true
}

func formField(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := strings.TrimSpace(vs[0])
	return &v
}
