package cards

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

// Store is the persistence the service needs.
type Store interface {
	Insert(ctx context.Context, c *Card) error
	// FindByID is not scoped to a user so that the service can tell a
	// missing card from someone else's.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Card, error)
	List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Card, error)
	Update(ctx context.Context, c *Card) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountOwned(ctx context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	DeleteOwned(ctx context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	ExternalIDExists(ctx context.Context, user primitive.ObjectID, externalID string) (bool, error)
	DetachCategory(ctx context.Context, user, category primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
	DeleteBefore(ctx context.Context, date string) (int64, error)
}

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("cards")}
}

// EnsureIndexes creates the indexes for day listings and import
// de-duplication.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start_time", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "external_id", Value: 1}},
			Options: options.Index().
				SetName("user_external_id").
				SetPartialFilterExpression(bson.M{"external_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, c *Card) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Card, error) {
	var c Card
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find card %s: %w", id, err)
	}
	return &c, nil
}

// List returns the user's cards ordered by date then start time.
func (r *Repo) List(ctx context.Context, user primitive.ObjectID, q ListQuery) ([]*Card, error) {
	filter := bson.M{"user": user}
	switch {
	case q.Date != "":
		filter["date"] = q.Date
	case q.From != "" || q.To != "":
		dateFilter := bson.M{}
		if q.From != "" {
			dateFilter["$gte"] = q.From
		}
		if q.To != "" {
			dateFilter["$lte"] = q.To
		}
		filter["date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Card
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return out, nil
}

// Update writes every mutable field of c.
func (r *Repo) Update(ctx context.Context, c *Card) error {
	c.UpdatedAt = time.Now()

	set := bson.M{
		"title":       c.Title,
		"description": c.Description,
		"start_time":  c.StartTime,
		"date":        c.Date,
		"updated_at":  c.UpdatedAt,
	}
	unset := bson.M{}
	if c.CategoryID != nil {
		set["category"] = *c.CategoryID
	} else {
		unset["category"] = ""
	}
	if c.EndTime != "" {
		set["end_time"] = c.EndTime
	} else {
		unset["end_time"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID, "user": c.UserID}, update)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCardNotFound
	}
	return nil
}

// CountOwned counts how many of ids belong to user.
func (r *Repo) CountOwned(ctx context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}, "user": user})
	if err != nil {
		return 0, fmt.Errorf("count owned cards: %w", err)
	}
	return n, nil
}

func (r *Repo) DeleteOwned(ctx context.Context, user primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "user": user})
	if err != nil {
		return 0, fmt.Errorf("delete cards: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *Repo) ExternalIDExists(ctx context.Context, user primitive.ObjectID, externalID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx,
		bson.M{"user": user, "external_id": externalID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("look up external id: %w", err)
	}
	return n > 0, nil
}

// DetachCategory clears category from the user's cards.
func (r *Repo) DetachCategory(ctx context.Context, user, category primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user": user, "category": category},
		bson.M{"$unset": bson.M{"category": ""}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("detach category: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// DeleteBefore removes every card dated strictly before date.
func (r *Repo) DeleteBefore(ctx context.Context, date string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"date": bson.M{"$lt": date}})
	if err != nil {
		return 0, fmt.Errorf("purge cards: %w", err)
	}
	return res.DeletedCount, nil
}
