package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Store is the persistence the service needs. Every read and write is
// scoped to one user.
type Store interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, user, id primitive.ObjectID) (*Note, error)
	List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Note, error)
	Search(ctx context.Context, user primitive.ObjectID, q SearchQuery) ([]*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, user, id primitive.ObjectID) error
	Count(ctx context.Context, user primitive.ObjectID) (int64, error)
}

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("notes")}
}

// EnsureIndexes creates the text index and the per-user listing indexes.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().
				SetWeights(bson.D{{Key: "title", Value: 3}, {Key: "content", Value: 1}}),
		},
		{
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "card", Value: 1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, user, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "user": user}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id, err)
	}
	return &note, nil
}

// List returns the user's notes, newest first.
func (r *Repo) List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Note, error) {
	filter := bson.M{"user": user}
	if err := cardFilter(filter, q.Card); err != nil {
		return nil, err
	}

	opts := options.Find().
		SetLimit(int64(clampLimit(q.Limit))).
		SetSkip(int64(q.Offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	return r.find(ctx, filter, opts)
}

// Search runs a text query over one user's notes, optionally narrowed to a
// card and a creation window, best matches first.
func (r *Repo) Search(ctx context.Context, user primitive.ObjectID, q SearchQuery) ([]*Note, error) {
	filter := bson.M{"user": user}

	if q.Query != "" {
		filter["$text"] = bson.M{"$search": q.Query}
	}
	if err := cardFilter(filter, q.Card); err != nil {
		return nil, err
	}
	if q.Since != nil || q.Until != nil {
		dateFilter := bson.M{}
		if q.Since != nil {
			dateFilter["$gte"] = *q.Since
		}
		if q.Until != nil {
			dateFilter["$lte"] = *q.Until
		}
		filter["created_at"] = dateFilter
	}

	opts := options.Find().
		SetLimit(int64(clampLimit(q.Limit))).
		SetSkip(int64(q.Offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	// Relevance first when doing text search
	if q.Query != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: "created_at", Value: -1},
		})
	}

	return r.find(ctx, filter, opts)
}

func (r *Repo) Update(ctx context.Context, n *Note) error {
	n.UpdatedAt = time.Now()
	set := bson.M{
		"title":      n.Title,
		"content":    n.Content,
		"updated_at": n.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if n.CardID != nil {
		set["card"] = *n.CardID
	} else {
		update["$unset"] = bson.M{"card": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": n.ID, "user": n.UserID}, update)
	if err != nil {
		return fmt.Errorf("update note %s: %w", n.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": user})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, user primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"user": user})
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

func (r *Repo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Note, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func cardFilter(filter bson.M, card string) error {
	if card == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(card)
	if err != nil {
		return fmt.Errorf("%w: card id %q", ErrInvalidInput, card)
	}
	filter["card"] = oid
	return nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
