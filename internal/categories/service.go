package categories

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxNameLen = 64

// CardDetacher clears a deleted category from the cards that used it.
type CardDetacher interface {
	DetachCategory(ctx context.Context, user, category primitive.ObjectID) (int64, error)
}

type Service struct {
	store    Store
	detacher CardDetacher
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SetDetacher wires the card side in once it exists; cards depend on
// categories so it cannot be passed to NewService.
func (s *Service) SetDetacher(d CardDetacher) { s.detacher = d }

func (s *Service) Create(ctx context.Context, user primitive.ObjectID, input CreateInput) (*Category, error) {
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	color, ok := ParseColor(strings.TrimSpace(input.Color))
	if !ok {
		return nil, fmt.Errorf("%w: unknown color %q", ErrInvalidInput, input.Color)
	}

	c := &Category{Name: name, Color: color, UserID: user}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, user primitive.ObjectID) ([]*Category, error) {
	return s.store.List(ctx, user)
}

// Get returns one of the user's categories by hex id.
func (s *Service) Get(ctx context.Context, user primitive.ObjectID, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	return s.store.FindByID(ctx, user, oid)
}

// Owned checks that id names one of the user's categories.
func (s *Service) Owned(ctx context.Context, user, id primitive.ObjectID) error {
	_, err := s.store.FindByID(ctx, user, id)
	return err
}

func (s *Service) Update(ctx context.Context, user primitive.ObjectID, id string, input UpdateInput) (*Category, error) {
	c, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if c.Name, err = validName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Color != nil {
		color, ok := ParseColor(strings.TrimSpace(*input.Color))
		if !ok {
			return nil, fmt.Errorf("%w: unknown color %q", ErrInvalidInput, *input.Color)
		}
		c.Color = color
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the category and detaches it from the user's cards.
func (s *Service) Delete(ctx context.Context, user primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCategoryNotFound
	}
	if err := s.store.Delete(ctx, user, oid); err != nil {
		return err
	}
	if s.detacher != nil {
		if _, err := s.detacher.DetachCategory(ctx, user, oid); err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
	}
	return nil
}

func validName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, maxNameLen)
	}
	return name, nil
}
