package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"notrello/views/models"
)

// Layout wraps the children of ctx in the page shell. user is nil on the
// signed-out pages.
func Layout(title string, user *models.UserView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`).
			Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`).
			Raw(`<title>`).Text(title).Raw(` · Notrello</title>`).
			Raw(`<link rel="stylesheet" href="/static/style.css">`).
			Raw(`<script src="/static/app.js" defer></script></head><body>`)

		h.Raw(`<header class="topbar"><a class="brand" href="/dashboard">Notrello</a>`)
		if user != nil {
			h.Raw(`<nav><a href="/dashboard">Timeline</a><a href="/dashboard/calendar">Calendar</a><a href="/dashboard/notes">Notes</a></nav>`).
				Raw(`<form class="logout" method="post" action="/logout">`).
				Raw(`<span class="who">`).Text(user.Pseudo).Raw(`</span>`).
				Raw(`<button type="submit">Log out</button></form>`)
		}
		h.Raw(`</header><main>`)

		h.Render(templ.ClearChildren(ctx), templ.GetChildren(ctx))
		h.Raw(`</main></body></html>`)
		return h.Err()
	})
}

// Page renders body inside Layout.
func Page(title string, user *models.UserView, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(title, user).Render(templ.WithChildren(ctx, body), w)
	})
}
