package services

import (
	"context"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	store *repositories.Store
	now   func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(store *repositories.Store, now func() time.Time) *CommentService {
	return &CommentService{store: store, now: now}
}

// CreateComment adds a comment by authorID to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID int, text string) (*models.Comment, error) {
	if _, err := s.store.Posts.GetByID(ctx, postID); err != nil {
		return nil, storageError(err, "post")
	}

	comment := &models.Comment{PostID: postID, AuthorID: authorID, Text: text}
	comment.BeforeCreate(s.now())
	if err := comment.Validate(); err != nil {
		return nil, validationError(err, nil)
	}
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, storageError(err, "post")
	}
	return comment, nil
}

// ListPostComments returns a post's comments oldest first, authors attached.
func (s *CommentService) ListPostComments(ctx context.Context, postID int) ([]*models.Comment, error) {
	return listComments(ctx, s.store, postID)
}

func listComments(ctx context.Context, store *repositories.Store, postID int) ([]*models.Comment, error) {
	comments, err := store.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, storageError(err, "comments")
	}
	users := map[int]*models.User{}
	for _, c := range comments {
		u, ok := users[c.AuthorID]
		if !ok {
			u, err = store.Users.GetByID(ctx, c.AuthorID)
			if err != nil {
				return nil, storageError(err, "comment author")
			}
			users[c.AuthorID] = u
		}
		c.Author = u
	}
	return comments, nil
}
