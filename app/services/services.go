// Package services holds the feed queries and the mutations behind every page.
package services

import (
	"time"

	"yatube/app/models"
	"yatube/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

// Options tunes the services. Zero values select the defaults.
type Options struct {
	PageSize     int
	PasswordCost int
	Now          func() time.Time
}

// Services bundles every service over one repository store.
type Services struct {
	Feed     *FeedService
	Posts    *PostService
	Comments *CommentService
	Follows  *FollowService
	Users    *UserService
	Groups   *GroupService
}

func New(store *repositories.Store, opts Options) *Services {
	if opts.PageSize < 1 {
		opts.PageSize = models.DefaultPageSize
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Services{
		Feed:     NewFeedService(store, opts.PageSize),
		Posts:    NewPostService(store, opts.Now),
		Comments: NewCommentService(store, opts.Now),
		Follows:  NewFollowService(store, opts.Now),
		Users:    NewUserService(store.Users, opts.PasswordCost, opts.Now),
		Groups:   NewGroupService(store.Groups),
	}
}
