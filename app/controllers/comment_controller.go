package controllers

import (
	"net/http"
	"strconv"

	"yatube/app/services"
)

// CommentController handles replies to posts
type CommentController struct {
	posts *PostController
	svc   *services.Services
}

// NewCommentController creates a new CommentController. Invalid comments
// re-render the post page through posts.
func NewCommentController(svc *services.Services, posts *PostController) *CommentController {
	return &CommentController{posts: posts, svc: svc}
}

// AddComment stores a comment and returns to the post. A GET just returns to
// the post.
func (cc *CommentController) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		cc.posts.notFound(w, r)
		return
	}
	detail := "/posts/" + strconv.Itoa(id) + "/"
	if r.Method != http.MethodPost {
		http.Redirect(w, r, detail, http.StatusFound)
		return
	}

	text := r.FormValue("text")
	_, err := cc.svc.Comments.CreateComment(r.Context(), id, currentUser(r).ID, text)
	switch {
	case err == nil:
		http.Redirect(w, r, detail, http.StatusFound)
	case services.IsErrorCode(err, services.ErrInvalidInput):
		cc.posts.renderDetail(w, r, http.StatusBadRequest, id, text, services.FieldErrorsOf(err))
	default:
		cc.posts.sendError(w, r, err)
	}
}
