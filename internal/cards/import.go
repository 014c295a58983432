package cards

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/ics"
)

// ImportICS parses raw iCalendar text and imports its future events, plus
// the repetitions of recurring ones when a horizon is configured. A file
// without any usable event returns ErrNoEvents.
func (s *Service) ImportICS(ctx context.Context, user primitive.ObjectID, content, category string) (*ImportResult, error) {
	now := s.Now()

	events := ics.ParseAll(content, now)
	for occ := range ics.Occurrences(content, now, s.opts.RecurrenceHorizon) {
		events = append(events, occ)
	}
	if s.opts.Observer != nil {
		s.opts.Observer.EventsParsed(len(events))
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return s.ImportEvents(ctx, user, events, category)
}

// ImportEvents turns parsed events into cards. Events whose external id the
// user already imported are skipped; events that cannot be stored are
// reported in Errors without failing the others.
func (s *Service) ImportEvents(ctx context.Context, user primitive.ObjectID, events []ics.ParsedEvent, category string) (*ImportResult, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	cat, err := s.categoryRef(ctx, user, category)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Success: true, Events: []*Card{}}
	seen := make(map[string]bool)

	for i, ev := range events {
		if strings.TrimSpace(ev.Title) == "" || ev.Date == "" || ev.StartTime == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("event %d: missing title, date or startTime", i+1))
			continue
		}

		if ev.ExternalID != "" {
			if seen[ev.ExternalID] {
				res.Skipped++
				continue
			}
			seen[ev.ExternalID] = true

			exists, err := s.store.ExternalIDExists(ctx, user, ev.ExternalID)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("event %d: %v", i+1, err))
				continue
			}
			if exists {
				res.Skipped++
				continue
			}
		}

		c := &Card{
			Title:       strings.TrimSpace(ev.Title),
			Description: ev.Description,
			CategoryID:  cat,
			StartTime:   ev.StartTime,
			EndTime:     ev.EndTime,
			Date:        ev.Date,
			ExternalID:  ev.ExternalID,
			UserID:      user,
		}
		if err := validate(c); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("event %d: %v", i+1, err))
			continue
		}
		if err := s.store.Insert(ctx, c); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("event %d: %v", i+1, err))
			continue
		}
		res.Events = append(res.Events, c)
	}

	res.Imported = len(res.Events)
	if s.opts.Observer != nil && res.Imported > 0 {
		s.opts.Observer.CardsImported(res.Imported)
	}
	return res, nil
}

// Export renders all of the user's cards as an iCalendar file. Imported
// cards keep their original UID.
func (s *Service) Export(ctx context.Context, user primitive.ObjectID, name string) (string, error) {
	list, err := s.store.List(ctx, user, ListQuery{})
	if err != nil {
		return "", err
	}

	events := make([]ics.ExportEvent, len(list))
	for i, c := range list {
		uid := c.ExternalID
		if uid == "" {
			uid = c.ID.Hex() + "@notrello"
		}
		events[i] = ics.ExportEvent{
			UID:         uid,
			Title:       c.Title,
			Description: c.Description,
			Date:        c.Date,
			StartTime:   c.StartTime,
			EndTime:     c.EndTime,
		}
	}
	return ics.Export(name, events, s.opts.Now().UTC()), nil
}
