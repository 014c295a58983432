package cards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/timeline"
)

const dateLayout = "2006-01-02"

// CategoryChecker confirms that a category id belongs to the user.
type CategoryChecker interface {
	Owned(ctx context.Context, user, id primitive.ObjectID) error
}

// Observer is told about imports and moves, for metrics.
type Observer interface {
	EventsParsed(n int)
	CardsImported(n int)
	CardMoved()
}

// Options tune the service.
type Options struct {
	// Slots are the valid drop targets of Move.
	Slots timeline.Slots
	// Location decides what "today" and "now" mean.
	Location *time.Location
	// RecurrenceHorizon expands RRULE events this far ahead on .ics import.
	RecurrenceHorizon time.Duration
	Observer          Observer
	// Now is time.Now unless a test pins it.
	Now func() time.Time
}

type Service struct {
	store      Store
	categories CategoryChecker
	opts       Options
}

func NewService(store Store, categories CategoryChecker, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Slots.Validate() != nil {
		opts.Slots = timeline.DefaultSlots()
	}
	return &Service{store: store, categories: categories, opts: opts}
}

// Slots returns the drop targets the service accepts.
func (s *Service) Slots() timeline.Slots { return s.opts.Slots }

// Now returns the current time in the service location.
func (s *Service) Now() time.Time { return s.opts.Now().In(s.opts.Location) }

// Today returns the current date as YYYY-MM-DD.
func (s *Service) Today() string { return s.Now().Format(dateLayout) }

func (s *Service) Create(ctx context.Context, user primitive.ObjectID, input CreateInput) (*Card, error) {
	c := &Card{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		StartTime:   strings.TrimSpace(input.StartTime),
		EndTime:     strings.TrimSpace(input.EndTime),
		Date:        strings.TrimSpace(input.Date),
		UserID:      user,
	}
	if c.Date == "" {
		c.Date = s.Today()
	}

	cat, err := s.categoryRef(ctx, user, input.Category)
	if err != nil {
		return nil, err
	}
	c.CategoryID = cat

	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one of the user's cards. Another user's card is reported as
// not found.
func (s *Service) Get(ctx context.Context, user primitive.ObjectID, id string) (*Card, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != user {
		return nil, ErrCardNotFound
	}
	return c, nil
}

// List returns the user's cards matching q.
func (s *Service) List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Card, error) {
	for _, d := range []string{q.Date, q.From, q.To} {
		if d != "" && !validDate(d) {
			return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, d)
		}
	}
	return s.store.List(ctx, user, q)
}

func (s *Service) Update(ctx context.Context, user primitive.ObjectID, id string, input UpdateInput) (*Card, error) {
	c, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		c.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.StartTime != nil {
		c.StartTime = strings.TrimSpace(*input.StartTime)
	}
	if input.EndTime != nil {
		c.EndTime = strings.TrimSpace(*input.EndTime)
	}
	if input.Date != nil {
		c.Date = strings.TrimSpace(*input.Date)
	}
	if input.Category != nil {
		if c.CategoryID, err = s.categoryRef(ctx, user, *input.Category); err != nil {
			return nil, err
		}
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, user primitive.ObjectID, id string) error {
	c, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, c.ID)
}

// BulkDelete removes all of ids, or none of them when any is unknown or
// owned by someone else.
func (s *Service) BulkDelete(ctx context.Context, user primitive.ObjectID, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no card to delete", ErrInvalidInput)
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, ErrForbidden
		}
		if !seen[oid] {
			seen[oid] = true
			oids = append(oids, oid)
		}
	}

	n, err := s.store.CountOwned(ctx, user, oids)
	if err != nil {
		return 0, err
	}
	if n != int64(len(oids)) {
		return 0, ErrForbidden
	}
	return s.store.DeleteOwned(ctx, user, oids)
}

// Move drops the card on slot, keeping its duration. A drop that changes
// nothing (not a slot, or the slot it already starts at) is not an error:
// the result reports Moved false and the card as it was.
func (s *Service) Move(ctx context.Context, user primitive.ObjectID, id, slot string) (*MoveResult, error) {
	c, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	next, ok := timeline.Reassign(c.Times(), slot, s.opts.Slots)
	if !ok {
		return &MoveResult{Moved: false, Card: c}, nil
	}

	c.StartTime, c.EndTime = next.Start, next.End
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	if s.opts.Observer != nil {
		s.opts.Observer.CardMoved()
	}
	return &MoveResult{Moved: true, Card: c}, nil
}

// DetachCategory clears a deleted category from the user's cards.
func (s *Service) DetachCategory(ctx context.Context, user, category primitive.ObjectID) (int64, error) {
	return s.store.DetachCategory(ctx, user, category)
}

// Count returns the number of stored cards across users.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Purge deletes cards dated more than days before today.
func (s *Service) Purge(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.Now().AddDate(0, 0, -days).Format(dateLayout)
	return s.store.DeleteBefore(ctx, cutoff)
}

// Owned reports whether id is one of the user's cards, for packages that
// link to cards.
func (s *Service) Owned(ctx context.Context, user, id primitive.ObjectID) error {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != user {
		return ErrCardNotFound
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*Card, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCardNotFound
	}
	return s.store.FindByID(ctx, oid)
}

// owned loads a card the user is about to change.
func (s *Service) owned(ctx context.Context, user primitive.ObjectID, id string) (*Card, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != user {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) categoryRef(ctx context.Context, user primitive.ObjectID, hex string) (*primitive.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, hex)
	}
	if s.categories != nil {
		if err := s.categories.Owned(ctx, user, oid); err != nil {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, hex)
		}
	}
	return &oid, nil
}

func validate(c *Card) error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !timeline.ValidClock(c.StartTime) {
		return fmt.Errorf("%w: startTime must be HH:MM", ErrInvalidInput)
	}
	if c.EndTime != "" && !timeline.ValidClock(c.EndTime) {
		return fmt.Errorf("%w: endTime must be HH:MM", ErrInvalidInput)
	}
	if !validDate(c.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	c.StartTime = normalizeClock(c.StartTime)
	c.EndTime = normalizeClock(c.EndTime)
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// normalizeClock zero-pads "9:00" so that times sort as text.
func normalizeClock(s string) string {
	c, err := timeline.ParseClock(s)
	if err != nil {
		return s
	}
	return c.String()
}
