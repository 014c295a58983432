package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"notrello/views/components"
	"notrello/views/models"
)

var viewLabels = []struct{ view, label string }{
	{"month", "Month"},
	{"week", "Week"},
	{"day", "Day"},
}

func CalendarPage(v models.CalendarView) templ.Component {
	return components.Page(v.Title, &v.User, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Render(ctx, components.Pager(v.Title, calendarURL(v.View, v.Prev), calendarURL(v.View, v.Today), calendarURL(v.View, v.Next)))

		h.Raw(`<nav class="views">`)
		for _, vl := range viewLabels {
			h.Raw(`<a`).Href(calendarURL(vl.view, v.Date))
			if vl.view == v.View {
				h.Raw(` class="active"`)
			}
			h.Raw(`>`).Text(vl.label).Raw(`</a>`)
		}
		h.Raw(`</nav>`)

		h.Raw(`<table class="calendar `).Text(v.View).Raw(`">`)
		if len(v.Weekdays) > 0 {
			h.Raw(`<thead><tr>`)
			for _, d := range v.Weekdays {
				h.Raw(`<th>`).Text(d).Raw(`</th>`)
			}
			h.Raw(`</tr></thead>`)
		}
		h.Raw(`<tbody>`)
		for _, week := range v.Weeks {
			h.Raw(`<tr>`)
			for _, day := range week {
				h.Raw(`<td class="day`)
				if !day.InMonth {
					h.Raw(` other`)
				}
				if day.Today {
					h.Raw(` today`)
				}
				h.Raw(`"`).Attr("data-date", day.Date).Raw(`><a class="num"`).Href("/dashboard?date=" + day.Date).Raw(`>`).Text(day.Label).Raw(`</a>`)
				for _, c := range day.Cards {
					h.Render(ctx, components.Card(c, v.View != "day"))
				}
				h.Raw(`</td>`)
			}
			h.Raw(`</tr>`)
		}
		h.Raw(`</tbody></table>`)
		return h.Err()
	}))
}

func calendarURL(view, date string) string {
	return "/dashboard/calendar?" + url.Values{"view": {view}, "date": {date}}.Encode()
}
