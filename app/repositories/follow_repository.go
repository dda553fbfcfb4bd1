package repositories

import (
	"context"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// An edge is stored once under follow:<user>:<author> with a reverse
// follower:<author>:<user> marker used when an author is deleted.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

func followKey(userID, authorID int) []byte {
	return []byte(FollowKeyPrefix + padID(userID) + ":" + padID(authorID))
}

func followerKey(authorID, userID int) []byte {
	return []byte(FollowerKeyPrefix + padID(authorID) + ":" + padID(userID))
}

// Create inserts the edge. Two concurrent inserts of the same edge conflict in
// badger; the replayed transaction then finds the edge and reports it as
// already present.
func (r *BadgerFollowRepository) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	var created bool
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		created = false
		key := followKey(follow.UserID, follow.AuthorID)
		exists, err := keyExists(txn, key)
		if err != nil || exists {
			return err
		}
		for _, k := range [][]byte{entityKey(UserKeyPrefix, follow.UserID), entityKey(UserKeyPrefix, follow.AuthorID)} {
			ok, err := keyExists(txn, k)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}
		}
		if err := setEntity(txn, key, follow); err != nil {
			return err
		}
		if err := txn.Set(followerKey(follow.AuthorID, follow.UserID), nil); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Delete removes the edge if present
func (r *BadgerFollowRepository) Delete(ctx context.Context, userID, authorID int) (bool, error) {
	var deleted bool
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		deleted = false
		key := followKey(userID, authorID)
		exists, err := keyExists(txn, key)
		if err != nil || !exists {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(followerKey(authorID, userID)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Exists reports whether userID follows authorID
func (r *BadgerFollowRepository) Exists(ctx context.Context, userID, authorID int) (bool, error) {
	var exists bool
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, followKey(userID, authorID))
		return err
	})
	return exists, err
}

// ListAuthors returns the authors userID follows, ordered by id
func (r *BadgerFollowRepository) ListAuthors(ctx context.Context, userID int) ([]int, error) {
	authors := []int{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		for _, key := range collectKeys(txn, []byte(FollowKeyPrefix+padID(userID)+":")) {
			id, err := idFromKeySuffix(key)
			if err != nil {
				return err
			}
			authors = append(authors, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// deleteFollowEdgesTxn drops every edge in which userID is either end.
func deleteFollowEdgesTxn(txn *badger.Txn, userID int) error {
	own := FollowKeyPrefix + padID(userID) + ":"
	for _, key := range collectKeys(txn, []byte(own)) {
		authorID, err := idFromKeySuffix(key)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(followerKey(authorID, userID)); err != nil {
			return err
		}
	}

	rev := FollowerKeyPrefix + padID(userID) + ":"
	for _, key := range collectKeys(txn, []byte(rev)) {
		followerID, err := idFromKeySuffix(key)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(followKey(followerID, userID)); err != nil {
			return err
		}
	}
	return nil
}
