package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"notrello/views/models"
)

func TestHTML(t *testing.T) {
	convey.Convey("Given the HTML writer", t, func() {
		var buf bytes.Buffer
		h := NewHTML(&buf)

		convey.Convey("Then text and attributes are escaped", func() {
			h.Raw(`<a`).Attr("title", `"x" & y`).Raw(`>`).Text("<b>").Raw(`</a>`)
			convey.So(h.Err(), convey.ShouldBeNil)
			convey.So(buf.String(), convey.ShouldEqual, `<a title="&#34;x&#34; &amp; y">&lt;b&gt;</a>`)
		})

		convey.Convey("Then unsafe links are neutralised", func() {
			h.Raw(`<a`).Href("javascript:alert(1)").Raw(`>`)
			convey.So(buf.String(), convey.ShouldNotContainSubstring, "javascript")
		})
	})
}

func TestCard(t *testing.T) {
	convey.Convey("Given a card view", t, func() {
		c := models.CardView{ID: "abc", Title: "Gym", StartTime: "18:00", EndTime: "19:00", Color: "red", Category: "Sport", Description: "<p>legs</p>"}

		convey.Convey("Then it renders draggable with its slot data", func() {
			var buf bytes.Buffer
			convey.So(Card(c, false).Render(context.Background(), &buf), convey.ShouldBeNil)
			convey.So(buf.String(), convey.ShouldContainSubstring, `draggable="true" data-id="abc" data-start="18:00"`)
			convey.So(buf.String(), convey.ShouldContainSubstring, "18:00 - 19:00")
			convey.So(buf.String(), convey.ShouldContainSubstring, "<p>legs</p>")
		})

		convey.Convey("Then compact cards drop the description", func() {
			var buf bytes.Buffer
			Card(c, true).Render(context.Background(), &buf)
			convey.So(buf.String(), convey.ShouldNotContainSubstring, "legs")
		})
	})
}

func TestPage(t *testing.T) {
	convey.Convey("Given a page body", t, func() {
		var buf bytes.Buffer
		err := Page("Home", &models.UserView{Pseudo: "ada"}, Pager("Today", "/p", "/t", "/n")).Render(context.Background(), &buf)

		convey.Convey("Then it is wrapped in the layout", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(buf.String(), convey.ShouldStartWith, "<!DOCTYPE html>")
			convey.So(buf.String(), convey.ShouldContainSubstring, "<title>Home · Notrello</title>")
			convey.So(buf.String(), convey.ShouldContainSubstring, `<span class="who">ada</span>`)
			convey.So(buf.String(), convey.ShouldContainSubstring, `<h2>Today</h2>`)
			convey.So(buf.String(), convey.ShouldEndWith, "</main></body></html>")
		})
	})
}
