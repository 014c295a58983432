package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"notrello/views/components"
	"notrello/views/models"
)

// DashboardPage is the daily timeline. Each slot is a drop zone; app.js
// posts the drop to the move endpoint and reloads.
func DashboardPage(v models.DashboardView) templ.Component {
	return components.Page(v.Title, &v.User, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Render(ctx, components.Pager(v.Title, dayURL(v.Prev, v.Category), dayURL(v.Today, v.Category), dayURL(v.Next, v.Category)))
		h.Render(ctx, components.CategoryFilter(v.Date, v.Category, v.Categories))

		h.Raw(`<section class="timeline"`).Attr("data-date", v.Date).Raw(`>`)
		for _, row := range v.Rows {
			h.Raw(`<div class="slot"`).Attr("data-slot", row.Label).Raw(`><span class="label">`).Text(row.Label).Raw(`</span><div class="cards">`)
			for _, c := range row.Cards {
				h.Render(ctx, components.Card(c, false))
			}
			h.Raw(`</div></div>`)
		}
		h.Raw(`</section>`)

		if len(v.Unplaced) > 0 {
			h.Raw(`<section class="unplaced"><h3>Outside the board</h3>`)
			for _, c := range v.Unplaced {
				h.Render(ctx, components.Card(c, true))
			}
			h.Raw(`</section>`)
		}
		if v.Total == 0 {
			h.Raw(`<p class="empty">No card on this day.</p>`)
		}
		return h.Err()
	}))
}

func dayURL(date, category string) string {
	q := url.Values{"date": {date}}
	if category != "" {
		q.Set("category", category)
	}
	return "/dashboard?" + q.Encode()
}
