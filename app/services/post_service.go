package services

import (
	"context"
	"errors"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"
)

// PostInput is what the post form submits.
type PostInput struct {
	Text    string
	GroupID *int
	// Image is a stored media path. Empty means no new image was uploaded.
	Image string
}

// PostService handles business logic for posts
type PostService struct {
	store *repositories.Store
	now   func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(store *repositories.Store, now func() time.Time) *PostService {
	return &PostService{store: store, now: now}
}

var postFormFields = map[string]string{"group_id": "group"}

// CreatePost validates the input and stores a new post by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID int, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Text:     in.Text,
		AuthorID: authorID,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	post.BeforeCreate(s.now())
	if err := s.validate(ctx, post); err != nil {
		return nil, err
	}
	if err := s.store.Posts.Create(ctx, post); err != nil {
		return nil, storageError(err, "post")
	}
	return post, nil
}

// UpdatePost overwrites text and group of a post the caller wrote. The image
// is replaced only when the input carries a new one.
func (s *PostService) UpdatePost(ctx context.Context, postID, callerID int, in PostInput) (*models.Post, error) {
	post, err := s.store.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storageError(err, "post")
	}
	if post.AuthorID != callerID {
		return nil, &AppError{Code: ErrForbidden, Message: "only the author can edit this post"}
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if in.Image != "" {
		post.Image = in.Image
	}
	if err := s.validate(ctx, post); err != nil {
		return nil, err
	}
	if err := s.store.Posts.Update(ctx, post); err != nil {
		return nil, storageError(err, "post")
	}
	return post, nil
}

// GetPost retrieves a post with its author, group and comments
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.store.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "post")
	}
	if err := hydratePosts(ctx, s.store, []*models.Post{post}); err != nil {
		return nil, err
	}
	comments, err := listComments(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if err := post.AddComment(c); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// DeletePost removes a post together with its comments. It backs the
// administrative deletepost command; authors have no delete action.
func (s *PostService) DeletePost(ctx context.Context, postID int) error {
	return storageError(s.store.Posts.Delete(ctx, postID), "post")
}

func (s *PostService) validate(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return validationError(err, postFormFields)
	}
	if post.GroupID == nil {
		return nil
	}
	_, err := s.store.Groups.GetByID(ctx, *post.GroupID)
	if errors.Is(err, repositories.ErrNotFound) {
		return newInvalidInputError(map[string]string{"group": "Select a valid choice. That choice is not one of the available choices."})
	}
	return storageError(err, "group")
}
