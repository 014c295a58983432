package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
)

// brokenWriter is a response whose client went away.
type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(int)           {}
func (b *brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestExportWriteFailure(t *testing.T) {
	convey.Convey("Given an export to a client that went away", t, func() {
		var logs bytes.Buffer
		alice := auth.Identity{UserID: primitive.NewObjectID(), Pseudo: "alice"}
		svc := newTestService(newMemStore(), nil, nil)
		h := NewHandler(svc, 1<<20, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

		req := httptest.NewRequest(http.MethodGet, "/api/calendar/export.ics", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), alice))
		h.Export(&brokenWriter{header: http.Header{}}, req)

		convey.Convey("Then the write error is logged", func() {
			convey.So(logs.String(), convey.ShouldContainSubstring, "failed to write calendar export")
			convey.So(logs.String(), convey.ShouldContainSubstring, io.ErrClosedPipe.Error())
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the card endpoints", t, func() {
		ctx := context.Background()
		alice := auth.Identity{UserID: primitive.NewObjectID(), Pseudo: "alice"}
		bob := auth.Identity{UserID: primitive.NewObjectID(), Pseudo: "bob"}
		svc := newTestService(newMemStore(), nil, nil)
		h := NewHandler(svc, 1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))

		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/cartes", h.List)
		mux.HandleFunc("POST /api/cartes", h.Create)
		mux.HandleFunc("GET /api/cartes/{id}", h.Get)
		mux.HandleFunc("PATCH /api/cartes/{id}", h.Update)
		mux.HandleFunc("DELETE /api/cartes/{id}", h.Delete)
		mux.HandleFunc("POST /api/cartes/{id}/move", h.Move)
		mux.HandleFunc("POST /api/cartes/bulk-delete", h.BulkDelete)
		mux.HandleFunc("POST /api/calendar/import", h.Import)
		mux.HandleFunc("GET /api/calendar/export.ics", h.Export)

		do := func(who auth.Identity, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, body)
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			req = req.WithContext(auth.WithIdentity(req.Context(), who))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		card, err := svc.Create(ctx, alice.UserID, CreateInput{Title: "Review", StartTime: "09:00", EndTime: "10:30", Date: "2026-10-19"})
		convey.So(err, convey.ShouldBeNil)
		cardPath := "/api/cartes/" + card.ID.Hex()

		convey.Convey("Then create validates and returns the card", func() {
			rec := do(alice, http.MethodPost, "/api/cartes", "application/json", strings.NewReader(`{"title":"Gym","startTime":"18:00"}`))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"date":"2026-10-17"`)

			rec = do(alice, http.MethodPost, "/api/cartes", "application/json", strings.NewReader(`{"title":"Gym"}`))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then listing filters by date", func() {
			rec := do(alice, http.MethodGet, "/api/cartes?date=2026-10-19", "", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var body struct {
				Cartes []Card `json:"cartes"`
			}
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body.Cartes, convey.ShouldHaveLength, 1)

			rec = do(alice, http.MethodGet, "/api/cartes?date=2026-10-20", "", nil)
			convey.So(strings.TrimSpace(rec.Body.String()), convey.ShouldEqual, `{"cartes":[]}`)
		})

		convey.Convey("Then another user gets 404 on read and 403 on delete", func() {
			convey.So(do(bob, http.MethodGet, cardPath, "", nil).Code, convey.ShouldEqual, http.StatusNotFound)
			convey.So(do(bob, http.MethodDelete, cardPath, "", nil).Code, convey.ShouldEqual, http.StatusForbidden)
			convey.So(do(alice, http.MethodGet, cardPath, "", nil).Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then patch accepts a form body", func() {
			rec := do(alice, http.MethodPatch, cardPath, "application/x-www-form-urlencoded", strings.NewReader("title=Code+review&endTime="))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"title":"Code review"`)
			convey.So(rec.Body.String(), convey.ShouldNotContainSubstring, `"endTime"`)

			rec = do(alice, http.MethodPatch, cardPath, "text/plain", strings.NewReader("x"))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then moving keeps the duration", func() {
			rec := do(alice, http.MethodPost, cardPath+"/move", "application/json", strings.NewReader(`{"slot":"14:00"}`))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var res MoveResult
			convey.So(json.Unmarshal(rec.Body.Bytes(), &res), convey.ShouldBeNil)
			convey.So(res.Moved, convey.ShouldBeTrue)
			convey.So(res.Card.EndTime, convey.ShouldEqual, "15:30")
		})

		convey.Convey("Then an invalid drop is a 200 no-op", func() {
			rec := do(alice, http.MethodPost, cardPath+"/move", "application/json", strings.NewReader(`{"slot":"21:00"}`))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"moved":false`)
		})

		convey.Convey("Then bulk delete refuses foreign ids", func() {
			other, _ := svc.Create(ctx, bob.UserID, CreateInput{Title: "Bob's", StartTime: "08:00"})
			body := `{"ids":["` + card.ID.Hex() + `","` + other.ID.Hex() + `"]}`
			rec := do(alice, http.MethodPost, "/api/cartes/bulk-delete", "application/json", strings.NewReader(body))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusForbidden)

			rec = do(alice, http.MethodPost, "/api/cartes/bulk-delete", "application/json", strings.NewReader(`{"ids":[]}`))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then an uploaded .ics file is imported", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, _ := mw.CreateFormFile("file", "agenda.ics")
			_, _ = io.WriteString(fw, icsFile(vevent("a@x", "Dentist", "20261020T140000", "20261020T143000")))
			_ = mw.Close()

			rec := do(alice, http.MethodPost, "/api/calendar/import", mw.FormDataContentType(), &buf)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"imported":1`)
		})

		convey.Convey("Then a raw file without events is a 400", func() {
			rec := do(alice, http.MethodPost, "/api/calendar/import", "text/calendar", strings.NewReader("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "no valid event found in file")
		})

		convey.Convey("Then parsed events can be posted as JSON", func() {
			body := `{"events":[{"title":"Call","date":"2026-10-21","startTime":"11:00","externalId":"call-1"}]}`
			rec := do(alice, http.MethodPost, "/api/calendar/import", "application/json", strings.NewReader(body))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"imported":1`)
		})

		convey.Convey("Then oversized uploads are refused", func() {
			small := NewHandler(svc, 16, slog.New(slog.NewTextHandler(io.Discard, nil)))
			req := httptest.NewRequest(http.MethodPost, "/api/calendar/import", strings.NewReader(strings.Repeat("X", 64)))
			req = req.WithContext(auth.WithIdentity(req.Context(), alice))
			rec := httptest.NewRecorder()
			small.Import(rec, req)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		convey.Convey("Then export serves an iCalendar file", func() {
			rec := do(alice, http.MethodGet, "/api/calendar/export.ics", "", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Header().Get("Content-Type"), convey.ShouldStartWith, "text/calendar")
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "SUMMARY:Review")
		})
	})
}
