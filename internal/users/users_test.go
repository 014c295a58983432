package users

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
)

type memStore struct {
	mu    sync.Mutex
	users []*User
}

func (m *memStore) Insert(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	m.users = append(m.users, u)
	return nil
}

func (m *memStore) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return m.find(func(u *User) bool { return u.Email == email })
}

func (m *memStore) FindByPseudo(_ context.Context, pseudo string) (*User, error) {
	return m.find(func(u *User) bool { return u.Pseudo == pseudo })
}

func (m *memStore) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type countingObserver struct{ n int }

func (c *countingObserver) UserRegistered() { c.n++ }

func TestService(t *testing.T) {
	convey.Convey("Given a user service", t, func() {
		ctx := context.Background()
		obs := &countingObserver{}
		svc := NewService(&memStore{}, obs)

		u, err := svc.Register(ctx, RegisterInput{Pseudo: " ada ", Email: "Ada@Example.com", Password: "lovelace1815"})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then registration normalises and hashes", func() {
			convey.So(u.Pseudo, convey.ShouldEqual, "ada")
			convey.So(u.Email, convey.ShouldEqual, "ada@example.com")
			convey.So(u.PasswordHash, convey.ShouldNotEqual, "lovelace1815")
			convey.So(obs.n, convey.ShouldEqual, 1)
		})

		convey.Convey("Then duplicates are refused", func() {
			_, err := svc.Register(ctx, RegisterInput{Pseudo: "ada", Email: "other@example.com", Password: "lovelace1815"})
			convey.So(err, convey.ShouldEqual, ErrPseudoTaken)

			_, err = svc.Register(ctx, RegisterInput{Pseudo: "countess", Email: "ADA@example.com", Password: "lovelace1815"})
			convey.So(err, convey.ShouldEqual, ErrEmailTaken)
		})

		convey.Convey("Then invalid registrations are refused", func() {
			bad := []RegisterInput{
				{Pseudo: "", Email: "x@example.com", Password: "longenough"},
				{Pseudo: "a@b", Email: "x@example.com", Password: "longenough"},
				{Pseudo: "bob", Email: "not-an-email", Password: "longenough"},
				{Pseudo: "bob", Email: "x@example.com", Password: "short"},
				{Pseudo: strings.Repeat("b", 33), Email: "x@example.com", Password: "longenough"},
			}
			for _, in := range bad {
				_, err := svc.Register(ctx, in)
				convey.So(err, convey.ShouldWrap, ErrInvalidInput)
			}
		})

		convey.Convey("Then login accepts the pseudo or the email", func() {
			got, err := svc.Login(ctx, LoginInput{Identifier: "ada", Password: "lovelace1815"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.ID, convey.ShouldEqual, u.ID)

			got, err = svc.Login(ctx, LoginInput{Identifier: "ADA@example.com", Password: "lovelace1815"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.ID, convey.ShouldEqual, u.ID)
		})

		convey.Convey("Then bad logins look the same", func() {
			_, err := svc.Login(ctx, LoginInput{Identifier: "ada", Password: "babbage"})
			convey.So(err, convey.ShouldEqual, ErrInvalidCredentials)

			_, err = svc.Login(ctx, LoginInput{Identifier: "nobody", Password: "lovelace1815"})
			convey.So(err, convey.ShouldEqual, ErrInvalidCredentials)
		})

		convey.Convey("Then existence checks work", func() {
			ok, err := svc.EmailExists(ctx, "ada@example.com")
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)

			ok, _ = svc.PseudoExists(ctx, "grace")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the account endpoints", t, func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		tokens := auth.NewTokens("0123456789abcdef-secret", time.Hour)
		h := NewHandler(NewService(&memStore{}, nil), tokens, false, log)
		mw := auth.NewMiddleware(tokens, log)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/register", h.Register)
		mux.HandleFunc("POST /api/login", h.Login)
		mux.HandleFunc("POST /api/logout", h.Logout)
		mux.HandleFunc("GET /api/find-pseudo", h.FindPseudo)
		mux.Handle("GET /api/me", mw.APIFunc(h.Me))

		do := func(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			for _, c := range cookies {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		rec := do(http.MethodPost, "/api/register", `{"pseudo":"ada","email":"ada@example.com","password":"lovelace1815"}`)
		convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)
		session := rec.Result().Cookies()[0]

		convey.Convey("Then registering sets a usable session", func() {
			convey.So(session.Name, convey.ShouldEqual, auth.CookieName)

			me := do(http.MethodGet, "/api/me", "", session)
			convey.So(me.Code, convey.ShouldEqual, http.StatusOK)

			var body struct {
				User map[string]any `json:"user"`
			}
			convey.So(json.Unmarshal(me.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body.User["pseudo"], convey.ShouldEqual, "ada")
			convey.So(body.User, convey.ShouldNotContainKey, "PasswordHash")
		})

		convey.Convey("Then a duplicate pseudo conflicts", func() {
			rec := do(http.MethodPost, "/api/register", `{"pseudo":"ada","email":"b@example.com","password":"lovelace1815"}`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)
		})

		convey.Convey("Then a wrong password is unauthorized", func() {
			rec := do(http.MethodPost, "/api/login", `{"identifier":"ada","password":"nope-nope"}`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("Then a malformed body is a bad request", func() {
			rec := do(http.MethodPost, "/api/login", `{`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then logout clears the cookie", func() {
			rec := do(http.MethodPost, "/api/logout", "")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Result().Cookies()[0].MaxAge, convey.ShouldBeLessThan, 0)
		})

		convey.Convey("Then pseudo lookups report existence", func() {
			rec := do(http.MethodGet, "/api/find-pseudo?pseudo=ada", "")
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"exists":true`)

			rec = do(http.MethodGet, "/api/find-pseudo", "")
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"exists":false`)
		})
	})
}
