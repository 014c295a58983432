// Package web serves the HTML pages: the sign-in forms, the daily timeline,
// the calendar and the notes.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
	"notrello/internal/cards"
	"notrello/internal/categories"
	"notrello/internal/notes"
	"notrello/internal/timeline"
	"notrello/internal/users"
	"notrello/views/models"
)

const maxForm = 64 << 10

type Accounts interface {
	Register(ctx context.Context, input users.RegisterInput) (*users.User, error)
	Login(ctx context.Context, input users.LoginInput) (*users.User, error)
}

type Cards interface {
	List(ctx context.Context, user primitive.ObjectID, q cards.ListQuery) ([]*cards.Card, error)
	Slots() timeline.Slots
	Now() time.Time
}

type Categories interface {
	List(ctx context.Context, user primitive.ObjectID) ([]*categories.Category, error)
}

type Notes interface {
	List(ctx context.Context, user primitive.ObjectID, q notes.ListQuery) ([]*notes.Note, error)
	Search(ctx context.Context, user primitive.ObjectID, q notes.SearchQuery) ([]*notes.Note, error)
	Count(ctx context.Context, user primitive.ObjectID) (int64, error)
	RenderMarkdown(content string) string
}

type Options struct {
	Tokens       *auth.Tokens
	CookieSecure bool
	WeekStart    time.Weekday
	// Identify tells whether a request already carries a session, so that
	// the sign-in pages can send the user on to the dashboard.
	Identify func(*http.Request) (auth.Identity, bool)
}

type Handler struct {
	accounts   Accounts
	cards      Cards
	categories Categories
	notes      Notes
	opts       Options
	log        *slog.Logger
}

func NewHandler(accounts Accounts, cards Cards, cats Categories, notes Notes, opts Options, log *slog.Logger) *Handler {
	return &Handler{
		accounts:   accounts,
		cards:      cards,
		categories: cats,
		notes:      notes,
		opts:       opts,
		log:        log,
	}
}

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, h.opts.CookieSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) signedIn(r *http.Request) bool {
	if h.opts.Identify == nil {
		return false
	}
	_, ok := h.opts.Identify(r)
	return ok
}

func (h *Handler) startSession(w http.ResponseWriter, u *users.User) error {
	token, exp, err := h.opts.Tokens.Issue(users.Identity(u))
	if err != nil {
		return err
	}
	auth.SetSession(w, token, exp, h.opts.CookieSecure)
	return nil
}

// authMessage is the text shown above a sign-in form for err.
func authMessage(err error) string {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		return "Invalid email, pseudo or password."
	case errors.Is(err, users.ErrPseudoTaken):
		return "This pseudo is already taken."
	case errors.Is(err, users.ErrEmailTaken):
		return "An account already uses this email."
	case errors.Is(err, users.ErrInvalidInput):
		return strings.TrimPrefix(err.Error(), users.ErrInvalidInput.Error()+": ")
	default:
		return "Something went wrong, please try again."
	}
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, users.ErrPseudoTaken), errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, users.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func userView(id auth.Identity) models.UserView {
	return models.UserView{Pseudo: id.Pseudo, Email: id.Email}
}
