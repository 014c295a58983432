package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"notrello/internal/respond"
)

// Middleware resolves the caller from the session cookie or a bearer token.
type Middleware struct {
	tokens *Tokens
	log    *slog.Logger
}

func NewMiddleware(tokens *Tokens, log *slog.Logger) *Middleware {
	return &Middleware{tokens: tokens, log: log}
}

// Identify returns the caller of r, if any.
func (m *Middleware) Identify(r *http.Request) (Identity, bool) {
	raw := tokenFrom(r)
	if raw == "" {
		return Identity{}, false
	}
	id, err := m.tokens.Parse(raw)
	if err != nil {
		m.log.Debug("rejected session token", "error", err, "path", r.URL.Path)
		return Identity{}, false
	}
	return id, true
}

// API rejects anonymous requests with a 401 JSON body.
func (m *Middleware) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.Identify(r)
		if !ok {
			respond.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// APIFunc is API for a handler function.
func (m *Middleware) APIFunc(fn http.HandlerFunc) http.Handler { return m.API(fn) }

// Page redirects anonymous requests to the login page.
func (m *Middleware) Page(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.Identify(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
