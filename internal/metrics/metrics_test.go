package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	convey.Convey("Given a fresh manager", t, func() {
		m := NewManager()

		convey.Convey("When domain events are reported", func() {
			m.EventsParsed(4)
			m.CardsImported(3)
			m.CardMoved()
			m.CardMoved()
			m.UserRegistered()
			m.SetCardsStored(42)
			m.SetUsersRegistered(7)

			convey.Convey("Then the counters and gauges follow", func() {
				convey.So(testutil.ToFloat64(m.eventsParsed), convey.ShouldEqual, 4)
				convey.So(testutil.ToFloat64(m.cardsImported), convey.ShouldEqual, 3)
				convey.So(testutil.ToFloat64(m.cardsMoved), convey.ShouldEqual, 2)
				convey.So(testutil.ToFloat64(m.registrations), convey.ShouldEqual, 1)
				convey.So(testutil.ToFloat64(m.cardsStored), convey.ShouldEqual, 42)
				convey.So(testutil.ToFloat64(m.usersTotal), convey.ShouldEqual, 7)
			})

			convey.Convey("Then the handler exposes them", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				body, _ := io.ReadAll(rec.Body)

				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body), convey.ShouldContainSubstring, "notrello_cards_imported_total 3")
				convey.So(string(body), convey.ShouldContainSubstring, "notrello_cards_stored 42")
			})
		})
	})

	convey.Convey("Given two managers", t, func() {
		convey.Convey("Then they do not collide on registration", func() {
			convey.So(func() { NewManager(); NewManager() }, convey.ShouldNotPanic)
		})
	})
}

func TestInstrument(t *testing.T) {
	convey.Convey("Given an instrumented mux", t, func() {
		m := NewManager(WithNamespace("test"))
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/cartes/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		h := m.Instrument(mux)

		convey.Convey("When a request matches a route", func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cartes/abc", nil))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cartes/def", nil))

			convey.Convey("Then it is counted under the pattern with its status", func() {
				c := m.httpRequests.WithLabelValues("GET /api/cartes/{id}", "GET", "404")
				convey.So(testutil.ToFloat64(c), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When nothing matches", func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

			convey.Convey("Then it is counted as unmatched", func() {
				c := m.httpRequests.WithLabelValues("unmatched", "GET", "404")
				convey.So(testutil.ToFloat64(c), convey.ShouldEqual, 1)
			})
		})
	})
}
