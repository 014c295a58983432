package notes

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxTitle = 120

// CardChecker confirms that a card belongs to the user.
type CardChecker interface {
	Owned(ctx context.Context, user, id primitive.ObjectID) error
}

type Service struct {
	store Store
	cards CardChecker
	md    goldmark.Markdown
}

func NewService(store Store, cards CardChecker) *Service {
	return &Service{
		store: store,
		cards: cards,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (s *Service) Create(ctx context.Context, user primitive.ObjectID, input CreateInput) (*Note, error) {
	n := &Note{
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		UserID:  user,
	}
	card, err := s.cardRef(ctx, user, input.Card)
	if err != nil {
		return nil, err
	}
	n.CardID = card

	if err := validate(n); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, user primitive.ObjectID, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoteNotFound
	}
	return s.store.FindByID(ctx, user, oid)
}

func (s *Service) List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Note, error) {
	return s.store.List(ctx, user, q)
}

// Search performs full-text search over titles and contents.
func (s *Service) Search(ctx context.Context, user primitive.ObjectID, q SearchQuery) ([]*Note, error) {
	q.Query = strings.TrimSpace(q.Query)
	return s.store.Search(ctx, user, q)
}

func (s *Service) Update(ctx context.Context, user primitive.ObjectID, id string, input UpdateInput) (*Note, error) {
	n, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		n.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	if input.Card != nil {
		if n.CardID, err = s.cardRef(ctx, user, *input.Card); err != nil {
			return nil, err
		}
	}

	if err := validate(n); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, user primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoteNotFound
	}
	return s.store.Delete(ctx, user, oid)
}

func (s *Service) Count(ctx context.Context, user primitive.ObjectID) (int64, error) {
	return s.store.Count(ctx, user)
}

// RenderMarkdown converts markdown content to HTML. Raw HTML in the source
// is not passed through.
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}

func (s *Service) cardRef(ctx context.Context, user primitive.ObjectID, hex string) (*primitive.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown card %q", ErrInvalidInput, hex)
	}
	if s.cards != nil {
		if err := s.cards.Owned(ctx, user, oid); err != nil {
			return nil, fmt.Errorf("%w: unknown card %q", ErrInvalidInput, hex)
		}
	}
	return &oid, nil
}

func validate(n *Note) error {
	if n.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(n.Title) > maxTitle {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitle)
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return nil
}
