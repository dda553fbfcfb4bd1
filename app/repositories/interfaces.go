package repositories

import (
	"context"
	"errors"

	"yatube/app/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// PostFilter narrows a post listing. The zero value selects every post.
// A non-nil AuthorIDs selects posts written by any of those authors; an empty
// non-nil slice selects nothing.
type PostFilter struct {
	GroupID   int
	AuthorID  int
	AuthorIDs []int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Delete removes the user together with their posts, the comments on
	// those posts, their own comments and every follow edge touching them.
	Delete(ctx context.Context, id int) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	// Delete removes the group after clearing the group of every post filed
	// under it.
	Delete(ctx context.Context, id int) error
}

// PostRepository defines the interface for post data access.
// Listings are ordered by pub_date descending, then id ascending.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and its comments.
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	// ListByPost returns a post's comments oldest first.
	ListByPost(ctx context.Context, postID int) ([]*models.Comment, error)
	Delete(ctx context.Context, id int) error
}

// FollowRepository stores subscription edges. Storage guarantees at most one
// edge per (user, author) pair.
type FollowRepository interface {
	// Create inserts the edge and reports whether it was new. An edge that
	// already exists is not an error.
	Create(ctx context.Context, follow *models.Follow) (bool, error)
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, userID, authorID int) (bool, error)
	Exists(ctx context.Context, userID, authorID int) (bool, error)
	// ListAuthors returns the ids of the authors userID follows.
	ListAuthors(ctx context.Context, userID int) ([]int, error)
}

// Store bundles one implementation of every repository over a shared backend.
type Store struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
}
