package session

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
)

// MongoStore keeps one document per session, keyed by token. The TTL index
// from Indexes lets the server reap expired documents; Get also filters them
// since the reaper runs only once a minute.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = "sessions"
	}
	return &MongoStore{coll: db.Collection(collection), now: time.Now}
}

// Indexes returns the index set the sessions collection needs.
func Indexes(collection string) nbmongo.IndexSet {
	if collection == "" {
		collection = "sessions"
	}
	return nbmongo.IndexSet{
		Collection: collection,
		Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("sessions_expires_at_ttl"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("sessions_user_id"),
			},
		},
	}
}

func (s *MongoStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}
	if _, err := s.coll.InsertOne(ctx, sess); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.coll.FindOne(ctx, bson.M{
		"_id":        token,
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}).Decode(&sess)
	if nbmongo.IsNotFound(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &sess, nil
}

func (s *MongoStore) Update(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sess.Token}, sess)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MongoStore) UpdateActivity(ctx context.Context, token string, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": token}, bson.M{"$set": bson.M{"last_activity_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, token string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
