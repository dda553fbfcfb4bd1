package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter repositories.PostFilter
		where  string
		args   int
		empty  bool
	}{
		{name: "all posts", filter: repositories.PostFilter{}},
		{name: "group", filter: repositories.PostFilter{GroupID: 3}, where: "WHERE group_id = $1", args: 1},
		{name: "author", filter: repositories.PostFilter{AuthorID: 3}, where: "WHERE author_id = $1", args: 1},
		{name: "followed authors", filter: repositories.PostFilter{AuthorIDs: []int{1, 2}}, where: "WHERE author_id = ANY($1)", args: 1},
		{name: "no followed authors", filter: repositories.PostFilter{AuthorIDs: []int{}}, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, empty := whereClause(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Len(t, args, tt.args)
			assert.Equal(t, tt.empty, empty)
		})
	}
}

// openTestDB connects to YATUBE_TEST_DATABASE_URL and starts from empty tables.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("YATUBE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("YATUBE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, url, 4)
	require.NoError(t, err)
	require.NoError(t, db.Truncate(ctx))
	t.Cleanup(db.Close)
	return db
}

func TestPostgresStore(t *testing.T) {
	db := openTestDB(t)
	store := db.Store()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	leo := &models.User{Username: "leo", PasswordHash: "x", CreatedAt: now}
	ann := &models.User{Username: "ann", PasswordHash: "x", CreatedAt: now}
	require.NoError(t, store.Users.Create(ctx, leo))
	require.NoError(t, store.Users.Create(ctx, ann))
	assert.ErrorIs(t, store.Users.Create(ctx, &models.User{Username: "leo", PasswordHash: "y", CreatedAt: now}), repositories.ErrDuplicate)

	cats := &models.Group{Title: "Cats", Slug: "cats", Description: "d"}
	require.NoError(t, store.Groups.Create(ctx, cats))

	for i := 0; i < 13; i++ {
		p := &models.Post{Text: "cat", AuthorID: leo.ID, PubDate: now.Add(time.Duration(i) * time.Second)}
		p.SetGroup(cats)
		require.NoError(t, store.Posts.Create(ctx, p))
	}

	t.Run("pagination", func(t *testing.T) {
		filter := repositories.PostFilter{GroupID: cats.ID}
		n, err := store.Posts.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 13, n)

		page, err := store.Posts.List(ctx, filter, 10, 10)
		require.NoError(t, err)
		assert.Len(t, page, 3)
	})

	t.Run("follow is idempotent", func(t *testing.T) {
		created, err := store.Follows.Create(ctx, &models.Follow{UserID: ann.ID, AuthorID: leo.ID, CreatedAt: now})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = store.Follows.Create(ctx, &models.Follow{UserID: ann.ID, AuthorID: leo.ID, CreatedAt: now})
		require.NoError(t, err)
		assert.False(t, created)

		n, err := store.Posts.Count(ctx, repositories.PostFilter{AuthorIDs: []int{leo.ID}})
		require.NoError(t, err)
		assert.Equal(t, 13, n)
	})

	t.Run("group delete clears posts", func(t *testing.T) {
		require.NoError(t, store.Groups.Delete(ctx, cats.ID))
		n, err := store.Posts.Count(ctx, repositories.PostFilter{})
		require.NoError(t, err)
		assert.Equal(t, 13, n)
	})

	t.Run("user delete cascades", func(t *testing.T) {
		posts, err := store.Posts.List(ctx, repositories.PostFilter{AuthorID: leo.ID}, 1, 0)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		require.NoError(t, store.Comments.Create(ctx, &models.Comment{PostID: posts[0].ID, AuthorID: ann.ID, Text: "hi", Created: now}))

		require.NoError(t, store.Users.Delete(ctx, leo.ID))

		n, err := store.Posts.Count(ctx, repositories.PostFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)

		ok, err := store.Follows.Exists(ctx, ann.ID, leo.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
