// Package cards stores the time-boxed cards of the board and implements
// their moves, imports and exports.
package cards

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/ics"
	"notrello/internal/timeline"
)

var (
	ErrCardNotFound = errors.New("card not found")
	ErrForbidden    = errors.New("card belongs to another user")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoEvents     = errors.New("no valid event found in file")
)

// Card is one entry of a user's board. Date is YYYY-MM-DD and the times are
// HH:MM; EndTime may be empty.
type Card struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  *primitive.ObjectID `bson:"category,omitempty" json:"category"`
	StartTime   string              `bson:"start_time" json:"startTime"`
	EndTime     string              `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Date        string              `bson:"date" json:"date"`
	ExternalID  string              `bson:"external_id,omitempty" json:"externalId,omitempty"`
	UserID      primitive.ObjectID  `bson:"user" json:"user"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Times returns the start/end pair used by timeline.Reassign.
func (c *Card) Times() timeline.Times {
	return timeline.Times{Start: c.StartTime, End: c.EndTime}
}

// CreateInput is the body of POST /api/cartes. Date defaults to today.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Date        string `json:"date"`
}

// UpdateInput is the body of PATCH /api/cartes/{id}. Nil fields are left
// alone; an empty Category or EndTime clears it.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Date        *string `json:"date"`
}

// ListQuery filters a listing: one Date, or an inclusive From..To range.
type ListQuery struct {
	Date string
	From string
	To   string
}

// MoveResult tells whether a drop changed the card.
type MoveResult struct {
	Moved bool  `json:"moved"`
	Card  *Card `json:"carte"`
}

// ImportRequest is the JSON body of POST /api/calendar/import for events
// already parsed on the client.
type ImportRequest struct {
	Events   []ics.ParsedEvent `json:"events"`
	Category string            `json:"category"`
}

// ImportResult reports an import. Skipped counts events already imported.
type ImportResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Events   []*Card  `json:"events"`
	Errors   []string `json:"errors,omitempty"`
}
