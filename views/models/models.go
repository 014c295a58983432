package models

import "time"

// UserView is the signed-in user shown in the header.
type UserView struct {
	Pseudo string
	Email  string
}

// CategoryView represents a category for template rendering
type CategoryView struct {
	ID       string
	Name     string
	Color    string
	Selected bool
}

// CardView represents a card for template rendering
type CardView struct {
	ID          string
	Title       string
	Description string // rendered HTML
	Date        string
	StartTime   string
	EndTime     string
	Category    string
	Color       string
}

// Span is the time range shown on a card.
func (c CardView) Span() string {
	if c.EndTime == "" {
		return c.StartTime
	}
	return c.StartTime + " - " + c.EndTime
}

// SlotRow is one drop target of the daily timeline.
type SlotRow struct {
	Label string
	Cards []CardView
}

// DashboardView is the daily timeline page.
type DashboardView struct {
	User       UserView
	Date       string
	Title      string
	Prev       string
	Next       string
	Today      string
	Category   string // active filter, empty for all
	Categories []CategoryView
	Rows       []SlotRow
	// Unplaced holds the cards of the day that start outside the board.
	Unplaced []CardView
	Total    int
}

// DayView is one cell of the calendar.
type DayView struct {
	Date    string
	Label   string
	InMonth bool
	Today   bool
	Cards   []CardView
}

// CalendarView is the month/week/day calendar page.
type CalendarView struct {
	User     UserView
	View     string
	Title    string
	Date     string
	Prev     string
	Next     string
	Today    string
	Weekdays []string
	Weeks    [][]DayView
}

// NoteView represents a note for template rendering
type NoteView struct {
	ID        string
	Title     string
	HTML      string
	CardTitle string
	CardDate  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotesView is the notes page.
type NotesView struct {
	User  UserView
	Query string
	Notes []NoteView
	Total int64
}

// AuthView is the login or register form.
type AuthView struct {
	Error      string
	Identifier string
	Pseudo     string
	Email      string
}
