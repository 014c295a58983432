package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRespond(t *testing.T) {
	convey.Convey("Given a recorder", t, func() {
		rec := httptest.NewRecorder()

		convey.Convey("When an error is written", func() {
			Error(rec, "card not found", http.StatusNotFound)

			convey.Convey("Then it is a JSON object with the status", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(rec.Header().Get("Content-Type"), convey.ShouldEqual, "application/json")
				convey.So(strings.TrimSpace(rec.Body.String()), convey.ShouldEqual, `{"error":"card not found"}`)
			})
		})

		convey.Convey("When a body is larger than the cap", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 64)+`"}`))
			var v struct{ Title string }
			err := Decode(rec, req, &v, 16)

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a small body is decoded", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Standup"}`))
			var v struct {
				Title string `json:"title"`
			}

			convey.Convey("Then the fields are filled", func() {
				convey.So(Decode(rec, req, &v, 1<<10), convey.ShouldBeNil)
				convey.So(v.Title, convey.ShouldEqual, "Standup")
			})
		})
	})

	convey.Convey("Given integer query values", t, func() {
		convey.So(ParseInt("", 50), convey.ShouldEqual, 50)
		convey.So(ParseInt("abc", 50), convey.ShouldEqual, 50)
		convey.So(ParseInt("12", 50), convey.ShouldEqual, 12)
	})
}
