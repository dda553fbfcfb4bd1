package repositories

import (
	"context"
	"testing"
	"time"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *Store
	ctx   context.Context
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store: newTestRepository(t).Store(),
		ctx:   context.Background(),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x", CreatedAt: f.clock}
	require.NoError(t, f.store.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, f.store.Groups.Create(f.ctx, g))
	return g
}

// post creates a post one minute after the previous one.
func (f *fixture) post(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	f.clock = f.clock.Add(time.Minute)
	p := &models.Post{Text: text, AuthorID: author.ID, PubDate: f.clock}
	if group != nil {
		p.SetGroup(group)
	}
	require.NoError(t, f.store.Posts.Create(f.ctx, p))
	return p
}

func texts(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Text
	}
	return out
}

func TestPostRepository(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	cats := f.group(t, "cats")

	t.Run("create and get post", func(t *testing.T) {
		post := f.post(t, leo, cats, "Test post")
		assert.Greater(t, post.ID, 0)

		got, err := f.store.Posts.GetByID(f.ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test post", got.Text)
		assert.True(t, got.InGroup(cats.ID))
		assert.True(t, got.PubDate.Equal(post.PubDate))
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := f.store.Posts.GetByID(f.ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update keeps author and pub_date", func(t *testing.T) {
		post := f.post(t, leo, cats, "Original")
		edited := &models.Post{ID: post.ID, Text: "Edited", AuthorID: 42}

		require.NoError(t, f.store.Posts.Update(f.ctx, edited))

		got, err := f.store.Posts.GetByID(f.ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited", got.Text)
		assert.Equal(t, leo.ID, got.AuthorID)
		assert.True(t, got.PubDate.Equal(post.PubDate))
		assert.Nil(t, got.GroupID)

		n, err := f.store.Posts.Count(f.ctx, PostFilter{GroupID: cats.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, n, "edited post left the group feed")
	})

	t.Run("author must exist", func(t *testing.T) {
		gone := f.user(t, "gone")
		require.NoError(t, f.store.Users.Delete(f.ctx, gone.ID))

		err := f.store.Posts.Create(f.ctx, &models.Post{Text: "orphan", AuthorID: gone.ID, PubDate: f.clock})
		assert.ErrorIs(t, err, ErrNotFound)

		n, err := f.store.Posts.Count(f.ctx, PostFilter{AuthorID: gone.ID})
		require.NoError(t, err)
		assert.Zero(t, n)
		_, err = f.store.Posts.List(f.ctx, PostFilter{}, 10, 0)
		assert.NoError(t, err)
	})

	t.Run("update missing post", func(t *testing.T) {
		err := f.store.Posts.Update(f.ctx, &models.Post{ID: 999, Text: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostRepositoryFeeds(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")
	cats := f.group(t, "cats")

	for i := 0; i < 13; i++ {
		f.post(t, leo, cats, "cat")
	}
	f.post(t, ann, nil, "ann-1")
	f.post(t, bob, nil, "bob-1")
	last := f.post(t, ann, nil, "ann-2")

	t.Run("global feed newest first", func(t *testing.T) {
		posts, err := f.store.Posts.List(f.ctx, PostFilter{}, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-2", "bob-1", "ann-1"}, texts(posts))
		assert.Equal(t, last.ID, posts[0].ID)

		n, err := f.store.Posts.Count(f.ctx, PostFilter{})
		require.NoError(t, err)
		assert.Equal(t, 16, n)
	})

	t.Run("group feed pages", func(t *testing.T) {
		first, err := f.store.Posts.List(f.ctx, PostFilter{GroupID: cats.ID}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, first, 10)

		second, err := f.store.Posts.List(f.ctx, PostFilter{GroupID: cats.ID}, 10, 10)
		require.NoError(t, err)
		assert.Len(t, second, 3)

		beyond, err := f.store.Posts.List(f.ctx, PostFilter{GroupID: cats.ID}, 10, 20)
		require.NoError(t, err)
		assert.Empty(t, beyond)
	})

	t.Run("author feed", func(t *testing.T) {
		posts, err := f.store.Posts.List(f.ctx, PostFilter{AuthorID: ann.ID}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-2", "ann-1"}, texts(posts))
	})

	t.Run("merged author feed", func(t *testing.T) {
		filter := PostFilter{AuthorIDs: []int{bob.ID, ann.ID}}
		posts, err := f.store.Posts.List(f.ctx, filter, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-2", "bob-1", "ann-1"}, texts(posts))

		n, err := f.store.Posts.Count(f.ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		second, err := f.store.Posts.List(f.ctx, filter, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-1"}, texts(second))
	})

	t.Run("later page of the global feed", func(t *testing.T) {
		posts, err := f.store.Posts.List(f.ctx, PostFilter{}, 2, 14)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "cat"}, texts(posts))

		beyond, err := f.store.Posts.List(f.ctx, PostFilter{}, 2, 16)
		require.NoError(t, err)
		assert.Empty(t, beyond)
	})

	t.Run("empty author set selects nothing", func(t *testing.T) {
		posts, err := f.store.Posts.List(f.ctx, PostFilter{AuthorIDs: []int{}}, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostRepositoryEqualTimestamps(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, f.store.Posts.Create(f.ctx, &models.Post{Text: text, AuthorID: leo.ID, PubDate: at}))
	}

	posts, err := f.store.Posts.List(f.ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts(posts))
}

func TestPostRepositoryDeleteCascadesComments(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	post := f.post(t, leo, nil, "doomed")

	comment := &models.Comment{PostID: post.ID, AuthorID: ann.ID, Text: "hi", Created: f.clock}
	require.NoError(t, f.store.Comments.Create(f.ctx, comment))

	require.NoError(t, f.store.Posts.Delete(f.ctx, post.ID))

	_, err := f.store.Posts.GetByID(f.ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.Comments.GetByID(f.ctx, comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := f.store.Posts.Count(f.ctx, PostFilter{AuthorID: leo.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, f.store.Posts.Delete(f.ctx, post.ID), ErrNotFound)
}
