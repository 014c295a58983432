package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"notrello/views/components"
	"notrello/views/models"
)

func LoginPage(v models.AuthView) templ.Component {
	return components.Page("Log in", nil, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<section class="auth"><h1>Log in</h1>`)
		formError(h, v.Error)
		h.Raw(`<form method="post" action="/login">`).
			Raw(`<label>Email or pseudo<input name="identifier" required autocomplete="username"`).Attr("value", v.Identifier).Raw(`></label>`).
			Raw(`<label>Password<input type="password" name="password" required autocomplete="current-password"></label>`).
			Raw(`<button type="submit">Log in</button></form>`).
			Raw(`<p>No account yet? <a href="/register">Sign up</a></p></section>`)
		return h.Err()
	}))
}

func RegisterPage(v models.AuthView) templ.Component {
	return components.Page("Sign up", nil, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := components.NewHTML(w)
		h.Raw(`<section class="auth"><h1>Sign up</h1>`)
		formError(h, v.Error)
		h.Raw(`<form method="post" action="/register">`).
			Raw(`<label>Pseudo<input name="pseudo" required maxlength="32" autocomplete="nickname"`).Attr("value", v.Pseudo).Raw(`></label>`).
			Raw(`<label>Email<input type="email" name="email" required autocomplete="email"`).Attr("value", v.Email).Raw(`></label>`).
			Raw(`<label>Password<input type="password" name="password" required minlength="8" autocomplete="new-password"></label>`).
			Raw(`<button type="submit">Create account</button></form>`).
			Raw(`<p>Already registered? <a href="/login">Log in</a></p></section>`)
		return h.Err()
	}))
}

func formError(h *components.HTML, msg string) {
	if msg != "" {
		h.Raw(`<p class="error" role="alert">`).Text(msg).Raw(`</p>`)
	}
}
