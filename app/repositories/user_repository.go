package repositories

import (
	"context"
	"strconv"
	"strings"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func usernameKey(username string) []byte {
	return []byte(UsernameKeyPrefix + username)
}

// Create creates a new user. Usernames are unique.
func (r *BadgerUserRepository) Create(ctx context.Context, user *models.User) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		taken, err := keyExists(txn, usernameKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, entityKey(UserKeyPrefix, user.ID), user); err != nil {
			return err
		}
		return txn.Set(usernameKey(user.Username), []byte(strconv.Itoa(user.ID)))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *BadgerUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		id, err := getIndexedID(txn, usernameKey(username))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user and everything that references them in one transaction.
func (r *BadgerUserRepository) Delete(ctx context.Context, id int) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var user models.User
		if err := getEntity(txn, entityKey(UserKeyPrefix, id), &user); err != nil {
			return err
		}

		// Posts, and with them every comment on them.
		for _, key := range collectKeys(txn, []byte(authorFeedPrefix(id))) {
			postID, err := idFromKeySuffix(key)
			if err != nil {
				return err
			}
			var post models.Post
			if err := getEntity(txn, entityKey(PostKeyPrefix, postID), &post); err != nil {
				return err
			}
			if err := deletePostTxn(txn, &post); err != nil {
				return err
			}
		}

		// Comments left on other authors' posts.
		for _, key := range collectKeys(txn, []byte(CommentByKeyPrefix+padID(id)+":")) {
			parts := strings.Split(strings.TrimPrefix(string(key), CommentByKeyPrefix), ":")
			if len(parts) != 3 {
				continue
			}
			postID, _ := strconv.Atoi(parts[1])
			commentID, _ := strconv.Atoi(parts[2])
			if err := deleteCommentTxn(txn, &models.Comment{ID: commentID, PostID: postID, AuthorID: id}); err != nil {
				return err
			}
		}

		if err := deleteFollowEdgesTxn(txn, id); err != nil {
			return err
		}
		if err := txn.Delete(usernameKey(user.Username)); err != nil {
			return err
		}
		return txn.Delete(entityKey(UserKeyPrefix, id))
	})
}
