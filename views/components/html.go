// Package components holds the building blocks shared by the pages.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to w, escaping text and attribute values. The first
// write error sticks and is returned by Err.
type HTML struct {
	w   io.Writer
	err error
}

func NewHTML(w io.Writer) *HTML { return &HTML{w: w} }

// Raw writes s as is.
func (h *HTML) Raw(s string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes s escaped.
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// Href writes an href attribute, dropping unsafe URL schemes.
func (h *HTML) Href(url string) *HTML {
	return h.Attr("href", string(templ.URL(url)))
}

// Render renders c in place.
func (h *HTML) Render(ctx context.Context, c templ.Component) *HTML {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
	return h
}

func (h *HTML) Err() error { return h.err }
