package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"notrello/internal/auth"
	"notrello/internal/respond"
)

const maxBody = 64 << 10

type Handler struct {
	svc          *Service
	tokens       *auth.Tokens
	cookieSecure bool
	log          *slog.Logger
}

func NewHandler(svc *Service, tokens *auth.Tokens, cookieSecure bool, log *slog.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, cookieSecure: cookieSecure, log: log}
}

type sessionResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Register(r.Context(), input)
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrPseudoTaken), errors.Is(err, ErrEmailTaken):
		respond.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.log.Error("failed to register user", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !h.startSession(w, u) {
		return
	}
	h.log.Info("user registered", "user", u.ID.Hex(), "pseudo", u.Pseudo)
	respond.JSON(w, sessionResponse{Success: true, User: u}, http.StatusCreated)
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := respond.Decode(w, r, &input, maxBody); err != nil {
		respond.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Login(r.Context(), input)
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		h.log.Error("failed to log in", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !h.startSession(w, u) {
		return
	}
	respond.JSON(w, sessionResponse{Success: true, User: u}, http.StatusOK)
}

// Logout handles POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, h.cookieSecure)
	respond.JSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// Me handles GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	u, err := h.svc.Get(r.Context(), id.UserID)
	if errors.Is(err, ErrUserNotFound) {
		respond.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("failed to get user", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	respond.JSON(w, map[string]*User{"user": u}, http.StatusOK)
}

// Verify handles GET /api/auth/verify. The middleware already checked the
// token; this echoes its claims.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	respond.JSON(w, map[string]auth.Identity{"user": id}, http.StatusOK)
}

// FindEmail handles GET /api/find-email?email=
func (h *Handler) FindEmail(w http.ResponseWriter, r *http.Request) {
	h.existence(w, r, "email", h.svc.EmailExists)
}

// FindPseudo handles GET /api/find-pseudo?pseudo=
func (h *Handler) FindPseudo(w http.ResponseWriter, r *http.Request) {
	h.existence(w, r, "pseudo", h.svc.PseudoExists)
}

func (h *Handler) existence(w http.ResponseWriter, r *http.Request, param string, check func(ctx context.Context, v string) (bool, error)) {
	v := r.URL.Query().Get(param)
	if v == "" {
		respond.JSON(w, map[string]bool{"exists": false}, http.StatusOK)
		return
	}
	ok, err := check(r.Context(), v)
	if err != nil {
		h.log.Error("failed to look up "+param, "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, map[string]bool{"exists": ok}, http.StatusOK)
}

func (h *Handler) startSession(w http.ResponseWriter, u *User) bool {
	token, exp, err := h.tokens.Issue(Identity(u))
	if err != nil {
		h.log.Error("failed to issue session", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	auth.SetSession(w, token, exp, h.cookieSecure)
	return true
}
