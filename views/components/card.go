package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"notrello/views/models"
)

// Card is a draggable card chip. compact drops the description.
func Card(c models.CardView, compact bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<article class="card color-`).Text(c.Color).Raw(`" draggable="true"`).
			Attr("data-id", c.ID).
			Attr("data-start", c.StartTime).
			Raw(`><header><span class="time">`).Text(c.Span()).Raw(`</span>`)
		if c.Category != "" {
			h.Raw(`<span class="tag">`).Text(c.Category).Raw(`</span>`)
		}
		h.Raw(`</header><h3>`).Text(c.Title).Raw(`</h3>`)
		if !compact && c.Description != "" {
			// Description is HTML rendered from markdown with raw HTML stripped.
			h.Raw(`<div class="desc">`).Raw(c.Description).Raw(`</div>`)
		}
		h.Raw(`</article>`)
		return h.Err()
	})
}

// CategoryFilter is the category selector of the timeline.
func CategoryFilter(date, active string, cats []models.CategoryView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<form class="filter" method="get" action="/dashboard">`).
			Raw(`<input type="hidden" name="date"`).Attr("value", date).Raw(`>`).
			Raw(`<select name="category" onchange="this.form.submit()">`).
			Raw(`<option value=""`)
		if active == "" {
			h.Raw(` selected`)
		}
		h.Raw(`>All categories</option>`)
		h.Raw(`<option value="none"`)
		if active == "none" {
			h.Raw(` selected`)
		}
		h.Raw(`>No category</option>`)
		for _, c := range cats {
			h.Raw(`<option`).Attr("value", c.ID)
			if c.Selected {
				h.Raw(` selected`)
			}
			h.Raw(`>`).Text(c.Name).Raw(`</option>`)
		}
		h.Raw(`</select><noscript><button type="submit">Filter</button></noscript></form>`)
		return h.Err()
	})
}

// Pager is the previous/today/next navigation.
func Pager(title, prevURL, todayURL, nextURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<div class="pager"><a class="prev"`).Href(prevURL).Raw(`>&larr;</a>`).
			Raw(`<a class="today"`).Href(todayURL).Raw(`>Today</a>`).
			Raw(`<a class="next"`).Href(nextURL).Raw(`>&rarr;</a>`).
			Raw(`<h2>`).Text(title).Raw(`</h2></div>`)
		return h.Err()
	})
}
