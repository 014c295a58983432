package categories

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

// Store is the persistence the service needs. Every lookup is scoped to
// the owning user.
type Store interface {
	Insert(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, user, id primitive.ObjectID) (*Category, error)
	List(ctx context.Context, user primitive.ObjectID) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, user, id primitive.ObjectID) error
}

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("categories")}
}

// EnsureIndexes creates the per-user listing index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, c *Category) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, user, id primitive.ObjectID) (*Category, error) {
	var c Category
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "user": user}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &c, nil
}

// List returns the user's categories sorted by name.
func (r *Repo) List(ctx context.Context, user primitive.ObjectID) ([]*Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Category
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, c *Category) error {
	c.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": c.ID, "user": c.UserID},
		bson.M{"$set": bson.M{"name": c.Name, "color": c.Color, "updated_at": c.UpdatedAt}},
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": user})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
