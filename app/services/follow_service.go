package services

import (
	"context"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService manages subscription edges. Both operations are idempotent.
type FollowService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewFollowService(store *repositories.Store, now func() time.Time) *FollowService {
	return &FollowService{store: store, now: now}
}

// Follow subscribes subscriberID to the author named username and returns
// that author. Following yourself, or someone already followed, changes nothing.
func (s *FollowService) Follow(ctx context.Context, subscriberID int, username string) (*models.User, error) {
	author, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, "author")
	}

	follow := &models.Follow{UserID: subscriberID, AuthorID: author.ID}
	if follow.IsSelf() {
		return author, nil
	}
	follow.BeforeCreate(s.now())
	if err := follow.Validate(); err != nil {
		return nil, validationError(err, nil)
	}
	if _, err := s.store.Follows.Create(ctx, follow); err != nil {
		return nil, storageError(err, "follow")
	}
	return author, nil
}

// Unfollow removes the edge if there is one.
func (s *FollowService) Unfollow(ctx context.Context, subscriberID int, username string) (*models.User, error) {
	author, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, "author")
	}
	if _, err := s.store.Follows.Delete(ctx, subscriberID, author.ID); err != nil {
		return nil, storageError(err, "follow")
	}
	return author, nil
}
