package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	convey.Convey("Given a warn level logger", t, func() {
		var buf bytes.Buffer
		log, lv, err := New(&buf, "WARN")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then info is dropped and warn is written", func() {
			log.Info("quiet")
			log.Warn("loud", "card", "abc")
			convey.So(buf.String(), convey.ShouldNotContainSubstring, "quiet")
			convey.So(buf.String(), convey.ShouldContainSubstring, "msg=loud card=abc")
		})

		convey.Convey("Then the level can be lowered at runtime", func() {
			convey.So(SetLevel(lv, "debug"), convey.ShouldBeNil)
			convey.So(lv.Level(), convey.ShouldEqual, slog.LevelDebug)
			log.Debug("now visible")
			convey.So(buf.String(), convey.ShouldContainSubstring, "now visible")
		})
	})

	convey.Convey("Given an unknown level", t, func() {
		_, _, err := New(&bytes.Buffer{}, "chatty")

		convey.Convey("Then New fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRequests(t *testing.T) {
	convey.Convey("Given the request middleware", t, func() {
		var buf bytes.Buffer
		log, _, _ := New(&buf, "info")
		var seen string
		h := Requests(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))

		convey.Convey("When the client sends no id", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cartes", nil))

			convey.Convey("Then one is generated and echoed", func() {
				convey.So(seen, convey.ShouldHaveLength, 36)
				convey.So(rec.Header().Get(RequestIDHeader), convey.ShouldEqual, seen)
				convey.So(buf.String(), convey.ShouldContainSubstring, "status=418")
				convey.So(buf.String(), convey.ShouldContainSubstring, "path=/api/cartes")
			})
		})

		convey.Convey("When the client sends one", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "abc-123")
			h.ServeHTTP(httptest.NewRecorder(), req)

			convey.Convey("Then it is kept", func() {
				convey.So(seen, convey.ShouldEqual, "abc-123")
				convey.So(buf.String(), convey.ShouldContainSubstring, "id=abc-123")
			})
		})
	})
}
