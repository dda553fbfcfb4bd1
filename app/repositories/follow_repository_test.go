package repositories

import (
	"sync"
	"testing"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")

	t.Run("create is idempotent", func(t *testing.T) {
		created, err := f.store.Follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: ann.ID})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = f.store.Follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: ann.ID})
		require.NoError(t, err)
		assert.False(t, created)

		authors, err := f.store.Follows.ListAuthors(f.ctx, leo.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{ann.ID}, authors)
	})

	t.Run("exists is directed", func(t *testing.T) {
		ok, err := f.store.Follows.Exists(f.ctx, leo.ID, ann.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.store.Follows.Exists(f.ctx, ann.ID, leo.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := f.store.Follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: 999})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := f.store.Follows.Delete(f.ctx, leo.ID, ann.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = f.store.Follows.Delete(f.ctx, leo.ID, ann.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestFollowRepositoryConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.store.Follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: ann.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)

	authors, err := f.store.Follows.ListAuthors(f.ctx, leo.ID)
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}
