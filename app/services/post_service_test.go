package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	leo := register(t, svc, "leo")
	cats := createGroup(t, svc, "cats")
	missing := 999

	tests := []struct {
		name    string
		input   PostInput
		field   string
		wantErr bool
	}{
		{name: "valid post", input: PostInput{Text: "Hello"}},
		{name: "valid post in group", input: PostInput{Text: "Hello", GroupID: &cats.ID, Image: "posts/a.png"}},
		{name: "empty text", input: PostInput{Text: "   "}, field: "text", wantErr: true},
		{name: "unknown group", input: PostInput{Text: "Hello", GroupID: &missing}, field: "group", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := svc.Posts.CreatePost(ctx, leo.ID, tt.input)
			if tt.wantErr {
				assert.True(t, IsErrorCode(err, ErrInvalidInput))
				assert.Contains(t, FieldErrorsOf(err), tt.field)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, post.ID, 0)
			assert.False(t, post.PubDate.IsZero())
			assert.Equal(t, leo.ID, post.AuthorID)
		})
	}
}

func TestUpdatePost(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	leo := register(t, svc, "leo")
	ann := register(t, svc, "ann")
	cats := createGroup(t, svc, "cats")

	post, err := svc.Posts.CreatePost(ctx, leo.ID, PostInput{Text: "Original", GroupID: &cats.ID, Image: "posts/old.png"})
	require.NoError(t, err)

	t.Run("non-author is forbidden", func(t *testing.T) {
		_, err := svc.Posts.UpdatePost(ctx, post.ID, ann.ID, PostInput{Text: "Hijacked"})
		assert.True(t, IsErrorCode(err, ErrForbidden))

		got, err := svc.Posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Text)
	})

	t.Run("author edits keep image and pub_date", func(t *testing.T) {
		updated, err := svc.Posts.UpdatePost(ctx, post.ID, leo.ID, PostInput{Text: "Edited"})
		require.NoError(t, err)
		assert.Equal(t, "Edited", updated.Text)
		assert.Nil(t, updated.GroupID)
		assert.Equal(t, "posts/old.png", updated.Image)
		assert.True(t, post.PubDate.Equal(updated.PubDate))
	})

	t.Run("new image replaces old", func(t *testing.T) {
		updated, err := svc.Posts.UpdatePost(ctx, post.ID, leo.ID, PostInput{Text: "Edited", Image: "posts/new.png"})
		require.NoError(t, err)
		assert.Equal(t, "posts/new.png", updated.Image)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.Posts.UpdatePost(ctx, 999, leo.ID, PostInput{Text: "x"})
		assert.True(t, IsErrorCode(err, ErrNotFound))
	})

	t.Run("invalid edit", func(t *testing.T) {
		_, err := svc.Posts.UpdatePost(ctx, post.ID, leo.ID, PostInput{Text: ""})
		assert.True(t, IsErrorCode(err, ErrInvalidInput))
	})
}

func TestGetAndDeletePost(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	leo := register(t, svc, "leo")
	ann := register(t, svc, "ann")

	post, err := svc.Posts.CreatePost(ctx, leo.ID, PostInput{Text: "Hello"})
	require.NoError(t, err)
	_, err = svc.Comments.CreateComment(ctx, post.ID, ann.ID, "Nice")
	require.NoError(t, err)

	got, err := svc.Posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Author.Username)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "ann", got.Comments[0].Author.Username)

	assert.Equal(t, post.ID, got.Comments[0].PostID)

	require.NoError(t, svc.Posts.DeletePost(ctx, post.ID))
	assert.True(t, IsErrorCode(svc.Posts.DeletePost(ctx, post.ID), ErrNotFound))

	_, err = svc.Posts.GetPost(ctx, post.ID)
	assert.True(t, IsErrorCode(err, ErrNotFound))
}
