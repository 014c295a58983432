package web

import (
	"net/http"
	"strings"

	"notrello/internal/users"
	"notrello/views/models"
	"notrello/views/pages"
)

// LoginPage handles GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, pages.LoginPage(models.AuthView{}))
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	input := users.LoginInput{
		Identifier: strings.TrimSpace(r.PostFormValue("identifier")),
		Password:   r.PostFormValue("password"),
	}

	u, err := h.accounts.Login(r.Context(), input)
	if err == nil {
		err = h.startSession(w, u)
	}
	if err != nil {
		status := authStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("failed to log in", "error", err)
		}
		h.render(w, r, status, pages.LoginPage(models.AuthView{
			Error:      authMessage(err),
			Identifier: input.Identifier,
		}))
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// RegisterPage handles GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, pages.RegisterPage(models.AuthView{}))
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	input := users.RegisterInput{
		Pseudo:   strings.TrimSpace(r.PostFormValue("pseudo")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	u, err := h.accounts.Register(r.Context(), input)
	if err == nil {
		err = h.startSession(w, u)
	}
	if err != nil {
		status := authStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("failed to register user", "error", err)
		}
		h.render(w, r, status, pages.RegisterPage(models.AuthView{
			Error:  authMessage(err),
			Pseudo: input.Pseudo,
			Email:  input.Email,
		}))
		return
	}
	h.log.Info("user registered", "user", u.ID.Hex(), "pseudo", u.Pseudo)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
