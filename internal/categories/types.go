// Package categories manages the colour-tagged groups users sort cards into.
package categories

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// Color is one of the fixed palette entries.
type Color string

const (
	Blue   Color = "blue"
	Green  Color = "green"
	Purple Color = "purple"
	Orange Color = "orange"
	Red    Color = "red"
	Pink   Color = "pink"
	Yellow Color = "yellow"
	Gray   Color = "gray"
)

// DefaultColor is used when a category is created without one.
const DefaultColor = Blue

// Palette lists the colours in display order.
var Palette = []Color{Blue, Green, Purple, Orange, Red, Pink, Yellow, Gray}

// ParseColor accepts a palette name; the empty string maps to DefaultColor.
func ParseColor(s string) (Color, bool) {
	if s == "" {
		return DefaultColor, true
	}
	for _, c := range Palette {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Category belongs to exactly one user.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Color     Color              `bson:"color" json:"color"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CreateInput is the body of POST /api/custom-cat.
type CreateInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateInput is the body of PATCH /api/custom-cat/{id}; nil fields are left
// alone.
type UpdateInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}
