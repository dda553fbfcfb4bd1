package services

import (
	"context"
	"errors"

	"yatube/app/models"
	"yatube/app/repositories"
)

// FeedService answers the paginated read queries behind the feed pages.
type FeedService struct {
	store    *repositories.Store
	pageSize int
}

func NewFeedService(store *repositories.Store, pageSize int) *FeedService {
	return &FeedService{store: store, pageSize: pageSize}
}

// ListGlobalFeed returns a page of every post.
func (s *FeedService) ListGlobalFeed(ctx context.Context, page int) (*models.Page, error) {
	return s.page(ctx, repositories.PostFilter{}, page)
}

// ListGroupFeed returns the group named by slug and a page of its posts.
func (s *FeedService) ListGroupFeed(ctx context.Context, slug string, page int) (*models.Group, *models.Page, error) {
	group, err := s.store.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, storageError(err, "group")
	}
	p, err := s.page(ctx, repositories.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return group, p, nil
}

// ListAuthorFeed returns the user named by username and a page of their posts.
func (s *FeedService) ListAuthorFeed(ctx context.Context, username string, page int) (*models.User, *models.Page, error) {
	author, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, storageError(err, "author")
	}
	p, err := s.page(ctx, repositories.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return author, p, nil
}

// ListFollowedFeed returns a page of posts by the authors userID follows.
func (s *FeedService) ListFollowedFeed(ctx context.Context, userID int, page int) (*models.Page, error) {
	authors, err := s.store.Follows.ListAuthors(ctx, userID)
	if err != nil {
		return nil, storageError(err, "follow")
	}
	return s.page(ctx, repositories.PostFilter{AuthorIDs: authors}, page)
}

// IsFollowing is false for anonymous viewers.
func (s *FeedService) IsFollowing(ctx context.Context, current *models.User, authorID int) (bool, error) {
	if current == nil {
		return false, nil
	}
	ok, err := s.store.Follows.Exists(ctx, current.ID, authorID)
	if err != nil {
		return false, storageError(err, "follow")
	}
	return ok, nil
}

func (s *FeedService) page(ctx context.Context, filter repositories.PostFilter, requested int) (*models.Page, error) {
	total, err := s.store.Posts.Count(ctx, filter)
	if err != nil {
		return nil, storageError(err, "posts")
	}
	w := models.Paginate(total, s.pageSize, requested)
	posts, err := s.store.Posts.List(ctx, filter, w.Limit, w.Offset)
	if err != nil {
		return nil, storageError(err, "posts")
	}
	if err := hydratePosts(ctx, s.store, posts); err != nil {
		return nil, err
	}
	return models.NewPage(posts, w, total), nil
}

// hydratePosts attaches Author and Group to each post, loading each distinct
// user and group once.
func hydratePosts(ctx context.Context, store *repositories.Store, posts []*models.Post) error {
	users := map[int]*models.User{}
	groups := map[int]*models.Group{}
	for _, p := range posts {
		author, ok := users[p.AuthorID]
		if !ok {
			u, err := store.Users.GetByID(ctx, p.AuthorID)
			if err != nil {
				return storageError(err, "author")
			}
			author = u
			users[p.AuthorID] = u
		}
		p.Author = author

		if p.GroupID == nil {
			p.Group = nil
			continue
		}
		group, ok := groups[*p.GroupID]
		if !ok {
			g, err := store.Groups.GetByID(ctx, *p.GroupID)
			if errors.Is(err, repositories.ErrNotFound) {
				// Group removed between the listing and this lookup.
				p.GroupID = nil
				continue
			}
			if err != nil {
				return storageError(err, "group")
			}
			group = g
			groups[*p.GroupID] = g
		}
		p.Group = group
	}
	return nil
}
