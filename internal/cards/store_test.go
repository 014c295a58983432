package cards

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	cards map[primitive.ObjectID]*Card
}

func newMemStore() *memStore {
	return &memStore{cards: map[primitive.ObjectID]*Card{}}
}

func (m *memStore) Insert(_ context.Context, c *Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	cp := *c
	m.cards[c.ID] = &cp
	return nil
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) List(_ context.Context, user primitive.ObjectID, q ListQuery) ([]*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Card
	for _, c := range m.cards {
		if c.UserID != user {
			continue
		}
		if q.Date != "" && c.Date != q.Date {
			continue
		}
		if q.From != "" && c.Date < q.From || q.To != "" && c.Date > q.To {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *Card) int {
		return strings.Compare(a.Date+a.StartTime, b.Date+b.StartTime)
	})
	return out, nil
}

func (m *memStore) Update(_ context.Context, c *Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.cards[c.ID]
	if !ok || cur.UserID != c.UserID {
		return ErrCardNotFound
	}
	cp := *c
	m.cards[c.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[id]; !ok {
		return ErrCardNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *memStore) CountOwned(_ context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := m.cards[id]; ok && c.UserID == user {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteOwned(_ context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := m.cards[id]; ok && c.UserID == user {
			delete(m.cards, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) ExternalIDExists(_ context.Context, user primitive.ObjectID, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.UserID == user && c.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DetachCategory(_ context.Context, user, category primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.cards {
		if c.UserID == user && c.CategoryID != nil && *c.CategoryID == category {
			c.CategoryID = nil
			n++
		}
	}
	return n, nil
}

func (m *memStore) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.cards)), nil
}

func (m *memStore) DeleteBefore(_ context.Context, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.cards {
		if c.Date < date {
			delete(m.cards, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards)
}

// ownedCategories accepts only the listed category ids.
type ownedCategories map[primitive.ObjectID]primitive.ObjectID

func (o ownedCategories) Owned(_ context.Context, user, id primitive.ObjectID) error {
	if o[id] != user {
		return ErrInvalidInput
	}
	return nil
}

type countingObserver struct {
	parsed, imported, moved int
}

func (c *countingObserver) EventsParsed(n int)  { c.parsed += n }
func (c *countingObserver) CardsImported(n int) { c.imported += n }
func (c *countingObserver) CardMoved()          { c.moved++ }
