package board_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/noticeboard/modules/board"
	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
)

func TestMongoStorage(t *testing.T) {
	mongoURL := os.Getenv("MONGODB_URL")
	if mongoURL == "" {
		t.Skip("MONGODB_URL not set")
	}
	ctx := context.Background()
	db, err := nbmongo.Connect(ctx, nbmongo.Config{
		ConnectionURL: mongoURL,
		Database:      fmt.Sprintf("nbtest_posts_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	require.NoError(t, nbmongo.EnsureIndexes(ctx, db, board.PostIndexes("posts")))

	storage := board.NewMongoStorage(db, "posts")
	author := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := &board.Post{ID: uuid.New(), Title: "older", AuthorID: &author, CreatedAt: base, UpdatedAt: base}
	newer := &board.Post{ID: uuid.New(), Title: "newer", CreatedAt: base.Add(time.Minute), UpdatedAt: base}
	require.NoError(t, storage.CreatePost(ctx, older))
	require.NoError(t, storage.CreatePost(ctx, newer))

	posts, err := storage.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Nil(t, posts[0].AuthorID)
	assert.Equal(t, author, *posts[1].AuthorID)

	c := board.Comment{ID: uuid.New(), Content: "hi", AuthorID: &author, CreatedAt: base, UpdatedAt: base}
	require.NoError(t, storage.AddComment(ctx, older.ID, c))
	got, err := storage.GetPost(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c.ID, got.Comments[0].ID)

	require.NoError(t, storage.DeleteComment(ctx, older.ID, c.ID))
	got, err = storage.GetPost(ctx, older.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	assert.ErrorIs(t, storage.AddComment(ctx, uuid.New(), c), board.ErrPostNotFound)
	require.NoError(t, storage.DeletePost(ctx, older.ID))
	_, err = storage.GetPost(ctx, older.ID)
	assert.ErrorIs(t, err, board.ErrPostNotFound)
	assert.ErrorIs(t, storage.DeletePost(ctx, older.ID), board.ErrPostNotFound)
}
