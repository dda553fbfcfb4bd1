package repositories

import (
	"context"
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments live under their post's id so a post's thread is one prefix scan.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

func commentKey(postID, id int) []byte {
	return []byte(CommentKeyPrefix + padID(postID) + ":" + padID(id))
}

func commentByKey(c *models.Comment) []byte {
	return []byte(CommentByKeyPrefix + padID(c.AuthorID) + ":" + padID(c.PostID) + ":" + padID(c.ID))
}

// Create creates a new comment. The post and the author must exist.
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		for _, k := range [][]byte{entityKey(PostKeyPrefix, comment.PostID), entityKey(UserKeyPrefix, comment.AuthorID)} {
			ok, err := keyExists(txn, k)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		if err := setEntity(txn, commentKey(comment.PostID, comment.ID), comment); err != nil {
			return err
		}
		if err := txn.Set(entityKey(CommentIDKeyPrefix, comment.ID), []byte(strconv.Itoa(comment.PostID))); err != nil {
			return err
		}
		return txn.Set(commentByKey(comment), nil)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		postID, err := getIndexedID(txn, entityKey(CommentIDKeyPrefix, id))
		if err != nil {
			return err
		}
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		comments, err = listCommentsTxn(txn, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(ctx context.Context, id int) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		postID, err := getIndexedID(txn, entityKey(CommentIDKeyPrefix, id))
		if err != nil {
			return err
		}
		var comment models.Comment
		if err := getEntity(txn, commentKey(postID, id), &comment); err != nil {
			return err
		}
		return deleteCommentTxn(txn, &comment)
	})
}

func listCommentsTxn(txn *badger.Txn, postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	opts := badger.DefaultIteratorOptions
	prefix := []byte(CommentKeyPrefix + padID(postID) + ":")
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, nil
}

func deleteCommentTxn(txn *badger.Txn, c *models.Comment) error {
	if err := txn.Delete(commentByKey(c)); err != nil {
		return err
	}
	if err := txn.Delete(entityKey(CommentIDKeyPrefix, c.ID)); err != nil {
		return err
	}
	return txn.Delete(commentKey(c.PostID, c.ID))
}
