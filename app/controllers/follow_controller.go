package controllers

import (
	"log/slog"
	"net/http"

	"yatube/app/services"
	"yatube/app/views"
)

// FollowController handles subscriptions and the followed-authors feed
type FollowController struct {
	base
	svc *services.Services
}

func NewFollowController(svc *services.Services, renderer *views.Renderer, logger *slog.Logger) *FollowController {
	return &FollowController{base: base{views: renderer, logger: logger}, svc: svc}
}

// FollowIndex renders posts by the authors the current user follows
func (fc *FollowController) FollowIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fc.svc.Feed.ListFollowedFeed(r.Context(), currentUser(r).ID, pageNumber(r))
	if err != nil {
		fc.sendError(w, r, err)
		return
	}
	fc.render(w, r, http.StatusOK, views.Follow, feedPage{Base: baseData(r, "Subscriptions"), Page: page})
}

// Follow subscribes the current user to the author in the path
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	author, err := fc.svc.Follows.Follow(r.Context(), currentUser(r).ID, varsOf(r, "username"))
	if err != nil {
		fc.sendError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}

// Unfollow removes the subscription, if any
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	author, err := fc.svc.Follows.Unfollow(r.Context(), currentUser(r).ID, varsOf(r, "username"))
	if err != nil {
		fc.sendError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}
