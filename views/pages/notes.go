package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"notrello/views/components"
	"notrello/views/models"
)

func NotesPage(v models.NotesView) templ.Component {
	return components.Page("Notes", &v.User, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<section class="notes"><form class="search" method="get" action="/dashboard/notes">`).
			Raw(`<input type="search" name="q" placeholder="Search notes"`).Attr("value", v.Query).Raw(`>`).
			Raw(`<button type="submit">Search</button></form>`)

		if v.Query != "" {
			h.Raw(`<p class="count">`).Text(fmt.Sprintf("%d result(s) for %q", len(v.Notes), v.Query)).Raw(`</p>`)
		} else {
			h.Raw(`<p class="count">`).Text(fmt.Sprintf("%d note(s)", v.Total)).Raw(`</p>`)
		}

		for _, n := range v.Notes {
			h.Raw(`<article class="note"`).Attr("data-id", n.ID).Raw(`><h3>`).Text(n.Title).Raw(`</h3>`)
			if n.CardTitle != "" {
				h.Raw(`<a class="linked"`).Href("/dashboard?date="+n.CardDate).Raw(`>`).Text(n.CardTitle).Raw(`</a>`)
			}
			h.Raw(`<div class="content">`).Raw(n.HTML).Raw(`</div>`).
				Raw(`<time`).Attr("datetime", n.CreatedAt.Format("2006-01-02T15:04:05Z07:00")).Raw(`>`).
				Text(n.CreatedAt.Format("2 Jan 2006 15:04")).Raw(`</time></article>`)
		}
		if len(v.Notes) == 0 {
			h.Raw(`<p class="empty">No note yet.</p>`)
		}
		h.Raw(`</section>`)
		return h.Err()
	}))
}
