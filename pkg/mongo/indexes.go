package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// IndexSet is the index list one collection needs.
type IndexSet struct {
	Collection string
	Models     []mongo.IndexModel
}

// EnsureIndexes creates the indexes of every set. Creating an index that
// already exists with the same definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, sets ...IndexSet) error {
	for _, set := range sets {
		if len(set.Models) == 0 {
			continue
		}
		if _, err := db.Collection(set.Collection).Indexes().CreateMany(ctx, set.Models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", set.Collection, err)
		}
	}
	return nil
}
