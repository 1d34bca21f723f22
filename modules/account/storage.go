package account

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
)

const (
	providerIndexName = "users_provider_identity"
	emailIndexName    = "users_email"
)

// UserIndexes declares the two uniqueness rules of the users collection.
// Emails are stored lowercased, so a plain unique index is case-insensitive
// in effect.
func UserIndexes(collection string) nbmongo.IndexSet {
	return nbmongo.IndexSet{
		Collection: collection,
		Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(providerIndexName),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName(emailIndexName),
			},
		},
	}
}

// MongoStorage implements auth.Storage.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = "users"
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

func (s *MongoStorage) CreateUser(ctx context.Context, user *auth.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
		user.UpdatedAt = user.CreatedAt
	}
	_, err := s.coll.InsertOne(ctx, user)
	if err == nil {
		return nil
	}
	if nbmongo.IsDuplicateKey(err) {
		return classifyDuplicate(err)
	}
	return fmt.Errorf("failed to insert user: %w", err)
}

// classifyDuplicate maps a unique violation to its rule by the colliding key
// fields, so indexes created under other names are classified the same way.
func classifyDuplicate(err error) error {
	fields := nbmongo.DuplicateKeyFields(err)
	if slices.Contains(fields, "email") {
		return auth.ErrEmailTaken
	}
	if slices.Contains(fields, "provider_id") || slices.Contains(fields, "provider") {
		return auth.ErrProviderIDTaken
	}
	return fmt.Errorf("failed to insert user: %w", err)
}

func (s *MongoStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStorage) GetUserByProvider(ctx context.Context, provider auth.Provider, providerID string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"provider": provider, "provider_id": providerID})
}

// GetUsersByIDs loads several users at once; unknown ids are skipped.
func (s *MongoStorage) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*auth.User, error) {
	out := make(map[uuid.UUID]*auth.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var users []*auth.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *MongoStorage) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var u auth.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if nbmongo.IsNotFound(err) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}
