package repositories

import (
	"context"
	"fmt"
	"sort"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB.
// Every post is listed under three feed indexes (all, per-group and
// per-author) whose keys sort newest first.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func groupFeedPrefix(groupID int) string {
	return FeedGroupKeyPrefix + padID(groupID) + ":"
}

func authorFeedPrefix(authorID int) string {
	return FeedAuthorKeyPrefix + padID(authorID) + ":"
}

func feedKeys(post *models.Post) [][]byte {
	sk := feedSortKey(post.PubDate, post.ID)
	keys := [][]byte{
		[]byte(FeedAllPrefix + sk),
		[]byte(authorFeedPrefix(post.AuthorID) + sk),
	}
	if post.GroupID != nil {
		keys = append(keys, []byte(groupFeedPrefix(*post.GroupID)+sk))
	}
	return keys
}

func groupFeedKey(post *models.Post) []byte {
	return []byte(groupFeedPrefix(*post.GroupID) + feedSortKey(post.PubDate, post.ID))
}

// Create creates a new post. The author must exist.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		ok, err := keyExists(txn, entityKey(UserKeyPrefix, post.AuthorID))
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, entityKey(PostKeyPrefix, post.ID), post); err != nil {
			return err
		}
		for _, key := range feedKeys(post) {
			if err := txn.Set(key, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update overwrites a post's text, group and image. Author and pub_date are
// kept from the stored record.
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var stored models.Post
		if err := getEntity(txn, entityKey(PostKeyPrefix, post.ID), &stored); err != nil {
			return err
		}
		post.AuthorID = stored.AuthorID
		post.PubDate = stored.PubDate

		if !sameGroup(stored.GroupID, post.GroupID) {
			if stored.GroupID != nil {
				if err := txn.Delete(groupFeedKey(&stored)); err != nil {
					return err
				}
			}
			if post.GroupID != nil {
				if err := txn.Set(groupFeedKey(post), nil); err != nil {
					return err
				}
			}
		}
		return setEntity(txn, entityKey(PostKeyPrefix, post.ID), post)
	})
}

func sameGroup(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Delete deletes a post by ID along with its comments
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
			return err
		}
		return deletePostTxn(txn, &post)
	})
}

// deletePostTxn removes a post, its feed index entries and its comments.
func deletePostTxn(txn *badger.Txn, post *models.Post) error {
	comments, err := listCommentsTxn(txn, post.ID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := deleteCommentTxn(txn, c); err != nil {
			return err
		}
	}
	for _, key := range feedKeys(post) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return txn.Delete(entityKey(PostKeyPrefix, post.ID))
}

// List retrieves one page of posts matching filter
func (r *BadgerPostRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		keys := pageFeedKeys(txn, filter, limit, offset)
		for _, key := range keys {
			id, err := idFromKeySuffix(key)
			if err != nil {
				return err
			}
			var post models.Post
			if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
				return fmt.Errorf("failed to load post %d: %w", id, err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns how many posts match filter
func (r *BadgerPostRepository) Count(ctx context.Context, filter PostFilter) (int, error) {
	var n int
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		if filter.AuthorIDs != nil {
			for _, id := range filter.AuthorIDs {
				n += countKeys(txn, []byte(authorFeedPrefix(id)))
			}
			return nil
		}
		n = countKeys(txn, []byte(filterPrefix(filter)))
		return nil
	})
	return n, err
}

func filterPrefix(filter PostFilter) string {
	switch {
	case filter.GroupID > 0:
		return groupFeedPrefix(filter.GroupID)
	case filter.AuthorID > 0:
		return authorFeedPrefix(filter.AuthorID)
	default:
		return FeedAllPrefix
	}
}

// pageFeedKeys returns one page of the index keys selected by filter, in
// feed order. Only the first offset+limit keys of each index are read.
func pageFeedKeys(txn *badger.Txn, filter PostFilter, limit, offset int) [][]byte {
	if limit <= 0 || offset < 0 {
		return nil
	}
	if filter.AuthorIDs == nil {
		return scanKeys(txn, []byte(filterPrefix(filter)), offset, limit)
	}

	// Merge several author indexes on their sort key. A page of the merged
	// feed can only draw on the head of each index.
	type ref struct {
		sortKey string
		key     []byte
	}
	var refs []ref
	for _, authorID := range filter.AuthorIDs {
		prefix := authorFeedPrefix(authorID)
		for _, key := range scanKeys(txn, []byte(prefix), 0, offset+limit) {
			refs = append(refs, ref{sortKey: string(key[len(prefix):]), key: key})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].sortKey < refs[j].sortKey })

	if offset >= len(refs) {
		return nil
	}
	end := offset + limit
	if end > len(refs) {
		end = len(refs)
	}
	keys := make([][]byte, 0, end-offset)
	for _, r := range refs[offset:end] {
		keys = append(keys, r.key)
	}
	return keys
}
