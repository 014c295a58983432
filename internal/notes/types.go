// Package notes stores free-form markdown notes, each optionally linked to
// one of the user's cards.
package notes

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Note is a titled markdown text owned by one user.
type Note struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title     string              `bson:"title" json:"title"`
	Content   string              `bson:"content" json:"content"` // markdown
	CardID    *primitive.ObjectID `bson:"card,omitempty" json:"carte,omitempty"`
	UserID    primitive.ObjectID  `bson:"user" json:"user"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

type CreateInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Card    string `json:"carte"`
}

// UpdateInput changes the non-nil fields; an empty Card unlinks the note.
type UpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Card    *string `json:"carte"`
}

// SearchQuery represents search parameters
type SearchQuery struct {
	Query  string     // full-text search query
	Card   string     // only notes linked to this card
	Since  *time.Time // notes after this date
	Until  *time.Time // notes before this date
	Limit  int
	Offset int
}

// ListQuery represents list parameters
type ListQuery struct {
	Card   string
	Limit  int
	Offset int
}
