package repositories

import (
	"testing"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	post := f.post(t, leo, nil, "post")
	other := f.post(t, leo, nil, "other")

	t.Run("create and list in order", func(t *testing.T) {
		for _, text := range []string{"first", "second"} {
			c := &models.Comment{PostID: post.ID, AuthorID: ann.ID, Text: text, Created: f.clock}
			require.NoError(t, f.store.Comments.Create(f.ctx, c))
			assert.Greater(t, c.ID, 0)
		}
		require.NoError(t, f.store.Comments.Create(f.ctx, &models.Comment{PostID: other.ID, AuthorID: ann.ID, Text: "elsewhere", Created: f.clock}))

		comments, err := f.store.Comments.ListByPost(f.ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "first", comments[0].Text)
		assert.Equal(t, "second", comments[1].Text)
	})

	t.Run("comment on missing post", func(t *testing.T) {
		err := f.store.Comments.Create(f.ctx, &models.Comment{PostID: 999, AuthorID: ann.ID, Text: "x", Created: f.clock})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("comment by missing author", func(t *testing.T) {
		gone := f.user(t, "gone")
		require.NoError(t, f.store.Users.Delete(f.ctx, gone.ID))

		err := f.store.Comments.Create(f.ctx, &models.Comment{PostID: post.ID, AuthorID: gone.ID, Text: "x", Created: f.clock})
		assert.ErrorIs(t, err, ErrNotFound)

		comments, err := f.store.Comments.ListByPost(f.ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
	})

	t.Run("get and delete", func(t *testing.T) {
		c := &models.Comment{PostID: other.ID, AuthorID: leo.ID, Text: "bye", Created: f.clock}
		require.NoError(t, f.store.Comments.Create(f.ctx, c))

		got, err := f.store.Comments.GetByID(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "bye", got.Text)

		require.NoError(t, f.store.Comments.Delete(f.ctx, c.ID))
		_, err = f.store.Comments.GetByID(f.ctx, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty thread", func(t *testing.T) {
		comments, err := f.store.Comments.ListByPost(f.ctx, 12345)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}
