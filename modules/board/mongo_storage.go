package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
)

// PostIndexes declares the indexes of the posts collection.
func PostIndexes(collection string) nbmongo.IndexSet {
	return nbmongo.IndexSet{
		Collection: collection,
		Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("posts_created_at"),
			},
			{
				Keys:    bson.D{{Key: "author_id", Value: 1}},
				Options: options.Index().SetName("posts_author_id"),
			},
		},
	}
}

type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = "posts"
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

func (s *MongoStorage) ListPosts(ctx context.Context) ([]*Post, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	posts := []*Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStorage) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var p Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if nbmongo.IsNotFound(err) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &p, nil
}

func (s *MongoStorage) CreatePost(ctx context.Context, p *Post) error {
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *MongoStorage) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoStorage) AddComment(ctx context.Context, postID uuid.UUID, c Comment) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoStorage) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
