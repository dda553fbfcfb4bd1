package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	leo := register(t, svc, "leo")
	cats := createGroup(t, svc, "cats")

	t.Run("invalid slug", func(t *testing.T) {
		_, err := svc.Groups.CreateGroup(ctx, "Bad", "bad slug", "d")
		assert.True(t, IsErrorCode(err, ErrInvalidInput))
		assert.Contains(t, FieldErrorsOf(err), "slug")
	})

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := svc.Groups.CreateGroup(ctx, "Cats", "cats", "again")
		assert.True(t, IsErrorCode(err, ErrDuplicate))
	})

	t.Run("list", func(t *testing.T) {
		groups, err := svc.Groups.List(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, 1)
	})

	t.Run("delete detaches posts", func(t *testing.T) {
		post, err := svc.Posts.CreatePost(ctx, leo.ID, PostInput{Text: "in cats", GroupID: &cats.ID})
		require.NoError(t, err)

		require.NoError(t, svc.Groups.DeleteGroup(ctx, "cats"))

		got, err := svc.Posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Nil(t, got.GroupID)
		assert.Nil(t, got.Group)

		_, err = svc.Groups.GetBySlug(ctx, "cats")
		assert.True(t, IsErrorCode(err, ErrNotFound))
	})
}
