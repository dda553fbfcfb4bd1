package repositories

import (
	"context"
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

func slugKey(slug string) []byte {
	return []byte(GroupSlugKeyPrefix + slug)
}

// Create creates a new group. Slugs are unique.
func (r *BadgerGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		taken, err := keyExists(txn, slugKey(group.Slug))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		if err := setEntity(txn, entityKey(GroupKeyPrefix, group.ID), group); err != nil {
			return err
		}
		return txn.Set(slugKey(group.Slug), []byte(strconv.Itoa(group.ID)))
	})
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	var group models.Group
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *BadgerGroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		id, err := getIndexedID(txn, slugKey(slug))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by id
func (r *BadgerGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	groups := []*models.Group{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(GroupKeyPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group models.Group
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			})
			if err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Delete detaches the group's posts and then removes the group.
func (r *BadgerGroupRepository) Delete(ctx context.Context, id int) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var group models.Group
		if err := getEntity(txn, entityKey(GroupKeyPrefix, id), &group); err != nil {
			return err
		}

		for _, key := range collectKeys(txn, []byte(groupFeedPrefix(id))) {
			postID, err := idFromKeySuffix(key)
			if err != nil {
				return err
			}
			var post models.Post
			if err := getEntity(txn, entityKey(PostKeyPrefix, postID), &post); err != nil {
				return err
			}
			post.GroupID = nil
			if err := setEntity(txn, entityKey(PostKeyPrefix, postID), &post); err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		if err := txn.Delete(slugKey(group.Slug)); err != nil {
			return err
		}
		return txn.Delete(entityKey(GroupKeyPrefix, id))
	})
}
