package web

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
	"notrello/internal/calendar"
	"notrello/internal/cards"
	"notrello/internal/categories"
	"notrello/internal/notes"
	"notrello/internal/timeline"
	"notrello/views/models"
	"notrello/views/pages"
)

// noCategory filters the timeline down to cards without a category.
const noCategory = "none"

// Dashboard handles GET /dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	today := calendar.Midnight(h.cards.Now())
	date := calendar.ParseDate(r.URL.Query().Get("date"), today)
	key := date.Format(calendar.DateLayout)
	filter := strings.TrimSpace(r.URL.Query().Get("category"))

	list, err := h.cards.List(r.Context(), id.UserID, cards.ListQuery{Date: key})
	if err != nil {
		h.fail(w, r, "list cards", err)
		return
	}
	cats, err := h.categories.List(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}

	list = filterByCategory(list, filter)
	known := categories.Index(cats)
	views := make([]models.CardView, len(list))
	for i, c := range list {
		views[i] = h.cardView(c, known)
	}

	slots := h.cards.Slots()
	rows := timeline.Group(views, func(c models.CardView) string { return c.StartTime }, slots)
	v := models.DashboardView{
		User:       userView(id),
		Date:       key,
		Title:      calendar.Title(calendar.Day, date, h.opts.WeekStart),
		Prev:       calendar.Prev(calendar.Day, date).Format(calendar.DateLayout),
		Next:       calendar.Next(calendar.Day, date).Format(calendar.DateLayout),
		Today:      today.Format(calendar.DateLayout),
		Category:   filter,
		Categories: categoryViews(cats, filter),
		Rows:       make([]models.SlotRow, len(rows)),
		Total:      len(views),
	}
	placed := 0
	for i, row := range rows {
		v.Rows[i] = models.SlotRow{Label: row.Label(), Cards: row.Items}
		placed += len(row.Items)
	}
	if placed < len(views) {
		for _, c := range views {
			if !onBoard(c.StartTime, slots) {
				v.Unplaced = append(v.Unplaced, c)
			}
		}
	}

	h.render(w, r, http.StatusOK, pages.DashboardPage(v))
}

// Calendar handles GET /dashboard/calendar
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	today := calendar.Midnight(h.cards.Now())
	view := calendar.ParseView(r.URL.Query().Get("view"))
	date := calendar.ParseDate(r.URL.Query().Get("date"), today)
	ws := h.opts.WeekStart

	from, to := calendar.Range(view, date, ws)
	list, err := h.cards.List(r.Context(), id.UserID, cards.ListQuery{
		From: from.Format(calendar.DateLayout),
		To:   to.Format(calendar.DateLayout),
	})
	if err != nil {
		h.fail(w, r, "list cards", err)
		return
	}
	cats, err := h.categories.List(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}

	known := categories.Index(cats)
	byDay := calendar.Bucket(list,
		func(c *cards.Card) string { return c.Date },
		func(c *cards.Card) string { return c.StartTime })

	day := func(d time.Time, inMonth bool) models.DayView {
		k := d.Format(calendar.DateLayout)
		dv := models.DayView{Date: k, Label: d.Format("2"), InMonth: inMonth, Today: d.Equal(today)}
		for _, c := range byDay[k] {
			dv.Cards = append(dv.Cards, h.cardView(c, known))
		}
		return dv
	}

	v := models.CalendarView{
		User:  userView(id),
		View:  string(view),
		Title: calendar.Title(view, date, ws),
		Date:  date.Format(calendar.DateLayout),
		Prev:  calendar.Prev(view, date).Format(calendar.DateLayout),
		Next:  calendar.Next(view, date).Format(calendar.DateLayout),
		Today: today.Format(calendar.DateLayout),
	}
	switch view {
	case calendar.Day:
		v.Weeks = [][]models.DayView{{day(date, true)}}
	case calendar.Week:
		week := make([]models.DayView, 0, 7)
		for _, d := range calendar.WeekDays(date, ws) {
			v.Weekdays = append(v.Weekdays, d.Format("Mon 2"))
			week = append(week, day(d, true))
		}
		v.Weeks = [][]models.DayView{week}
	default:
		for _, d := range calendar.WeekDays(date, ws) {
			v.Weekdays = append(v.Weekdays, d.Format("Mon"))
		}
		for _, cells := range calendar.MonthGrid(date.Year(), date.Month(), ws, today) {
			week := make([]models.DayView, len(cells))
			for i, c := range cells {
				week[i] = day(c.Date, c.InMonth)
			}
			v.Weeks = append(v.Weeks, week)
		}
	}

	h.render(w, r, http.StatusOK, pages.CalendarPage(v))
}

// Notes handles GET /dashboard/notes
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		list []*notes.Note
		err  error
	)
	if query != "" {
		list, err = h.notes.Search(r.Context(), id.UserID, notes.SearchQuery{Query: query, Limit: 100})
	} else {
		list, err = h.notes.List(r.Context(), id.UserID, notes.ListQuery{Limit: 100})
	}
	if err != nil {
		h.fail(w, r, "list notes", err)
		return
	}
	total, err := h.notes.Count(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, "count notes", err)
		return
	}

	linked, err := h.linkedCards(r, id.UserID, list)
	if err != nil {
		h.fail(w, r, "list linked cards", err)
		return
	}

	v := models.NotesView{User: userView(id), Query: query, Total: total}
	for _, n := range list {
		nv := models.NoteView{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			HTML:      h.notes.RenderMarkdown(n.Content),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
		if n.CardID != nil {
			if c, ok := linked[*n.CardID]; ok {
				nv.CardTitle, nv.CardDate = c.Title, c.Date
			}
		}
		v.Notes = append(v.Notes, nv)
	}

	h.render(w, r, http.StatusOK, pages.NotesPage(v))
}

// linkedCards indexes the user's cards by id when any note links one.
func (h *Handler) linkedCards(r *http.Request, user primitive.ObjectID, list []*notes.Note) (map[primitive.ObjectID]*cards.Card, error) {
	if !slices.ContainsFunc(list, func(n *notes.Note) bool { return n.CardID != nil }) {
		return nil, nil
	}
	all, err := h.cards.List(r.Context(), user, cards.ListQuery{})
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*cards.Card, len(all))
	for _, c := range all {
		out[c.ID] = c
	}
	return out, nil
}

func (h *Handler) cardView(c *cards.Card, known map[primitive.ObjectID]*categories.Category) models.CardView {
	ref := categories.Resolve(c.CategoryID, known)
	v := models.CardView{
		ID:        c.ID.Hex(),
		Title:     c.Title,
		Date:      c.Date,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Category:  categories.NameOf(ref),
		Color:     string(categories.ColorOf(ref)),
	}
	if c.Description != "" {
		v.Description = h.notes.RenderMarkdown(c.Description)
	}
	return v
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c,
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			h.log.Error("failed to render page", "path", r.URL.Path, "error", err)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error("failed to "+op, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func filterByCategory(list []*cards.Card, filter string) []*cards.Card {
	switch filter {
	case "":
		return list
	case noCategory:
		return slices.DeleteFunc(list, func(c *cards.Card) bool { return c.CategoryID != nil })
	default:
		return slices.DeleteFunc(list, func(c *cards.Card) bool {
			return c.CategoryID == nil || c.CategoryID.Hex() != filter
		})
	}
}

func categoryViews(cats []*categories.Category, active string) []models.CategoryView {
	out := make([]models.CategoryView, len(cats))
	for i, c := range cats {
		out[i] = models.CategoryView{
			ID:       c.ID.Hex(),
			Name:     c.Name,
			Color:    string(c.Color),
			Selected: c.ID.Hex() == active,
		}
	}
	return out
}

func onBoard(start string, slots timeline.Slots) bool {
	c, err := timeline.ParseClock(start)
	if err != nil {
		return false
	}
	_, ok := slots.SlotFor(c)
	return ok
}
