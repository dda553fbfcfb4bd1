package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"
)

const (
	maxUploadMemory = 1 << 20
	detailTitleLen  = 30
)

// PostController handles the feed pages and post authoring
type PostController struct {
	base
	svc   *services.Services
	media *media.Store
}

// NewPostController creates a new PostController
func NewPostController(svc *services.Services, renderer *views.Renderer, store *media.Store, logger *slog.Logger) *PostController {
	return &PostController{
		base:  base{views: renderer, logger: logger},
		svc:   svc,
		media: store,
	}
}

type feedPage struct {
	views.Base
	Page *models.Page
}

// Index renders the global feed
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.svc.Feed.ListGlobalFeed(r.Context(), pageNumber(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Index, feedPage{Base: baseData(r, "Latest posts"), Page: page})
}

// GroupPosts renders one group's feed
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, page, err := pc.svc.Feed.ListGroupFeed(r.Context(), varsOf(r, "slug"), pageNumber(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.GroupList, struct {
		feedPage
		Group *models.Group
	}{
		feedPage: feedPage{Base: baseData(r, group.Title), Page: page},
		Group:    group,
	})
}

// Profile renders an author's feed and whether the viewer follows them
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, page, err := pc.svc.Feed.ListAuthorFeed(r.Context(), varsOf(r, "username"), pageNumber(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	following, err := pc.svc.Feed.IsFollowing(r.Context(), currentUser(r), author.ID)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Profile, struct {
		feedPage
		Author    *models.User
		Following bool
	}{
		feedPage:  feedPage{Base: baseData(r, "Profile of "+author.Username), Page: page},
		Author:    author,
		Following: following,
	})
}

// detailPage is the data of the post page.
type detailPage struct {
	views.Base
	Post            *models.Post
	AuthorPostCount int
	CommentText     string
	Errors          map[string]string
}

// Show renders a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}
	pc.renderDetail(w, r, http.StatusOK, id, "", nil)
}

func (pc *PostController) renderDetail(w http.ResponseWriter, r *http.Request, status, id int, commentText string, errs map[string]string) {
	post, err := pc.svc.Posts.GetPost(r.Context(), id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	_, authorPage, err := pc.svc.Feed.ListAuthorFeed(r.Context(), post.Author.Username, 1)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, status, views.PostDetail, detailPage{
		Base:            baseData(r, titleOf(post)),
		Post:            post,
		AuthorPostCount: authorPage.Total,
		CommentText:     commentText,
		Errors:          errs,
	})
}

func titleOf(post *models.Post) string {
	runes := []rune(post.Text)
	if len(runes) > detailTitleLen {
		runes = runes[:detailTitleLen]
	}
	return string(runes)
}

// formPage is the data of the create/edit form.
type formPage struct {
	views.Base
	IsEdit  bool
	Action  string
	Text    string
	GroupID int
	Image   string
	Groups  []*models.Group
	Errors  map[string]string
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	groups, err := pc.svc.Groups.List(r.Context())
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	data.Groups = groups
	if data.IsEdit {
		data.Base = baseData(r, "Edit post")
	} else {
		data.Base = baseData(r, "New post")
	}
	pc.render(w, r, status, views.PostForm, data)
}

// Create shows the post form and stores a submitted post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	form := formPage{Action: "/create/"}
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, http.StatusOK, form)
		return
	}

	input, errs := pc.readPostForm(r)
	form.Text, form.GroupID, form.Errors = input.Text, derefID(input.GroupID), errs
	if len(errs) > 0 {
		pc.discardImage(input.Image)
		pc.renderForm(w, r, http.StatusBadRequest, form)
		return
	}

	user := currentUser(r)
	if _, err := pc.svc.Posts.CreatePost(r.Context(), user.ID, input); err != nil {
		pc.discardImage(input.Image)
		if services.IsErrorCode(err, services.ErrInvalidInput) {
			form.Errors = services.FieldErrorsOf(err)
			pc.renderForm(w, r, http.StatusBadRequest, form)
			return
		}
		pc.sendError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusFound)
}

// Edit shows the edit form and saves the author's changes. Anyone else gets
// the form back with nothing saved.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}
	post, err := pc.svc.Posts.GetPost(r.Context(), id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	action := "/posts/" + strconv.Itoa(id) + "/edit/"
	form := formPage{IsEdit: true, Action: action, Text: post.Text, GroupID: derefID(post.GroupID), Image: post.Image}
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, http.StatusOK, form)
		return
	}

	input, errs := pc.readPostForm(r)
	form.Text, form.GroupID = input.Text, derefID(input.GroupID)
	if len(errs) > 0 {
		pc.discardImage(input.Image)
		form.Errors = errs
		pc.renderForm(w, r, http.StatusBadRequest, form)
		return
	}

	_, err = pc.svc.Posts.UpdatePost(r.Context(), id, currentUser(r).ID, input)
	switch {
	case err == nil:
		http.Redirect(w, r, "/posts/"+strconv.Itoa(id)+"/", http.StatusFound)
	case services.IsErrorCode(err, services.ErrForbidden):
		// Someone else's post: show the form again without saving.
		pc.discardImage(input.Image)
		pc.renderForm(w, r, http.StatusOK, form)
	case services.IsErrorCode(err, services.ErrInvalidInput):
		pc.discardImage(input.Image)
		form.Errors = services.FieldErrorsOf(err)
		pc.renderForm(w, r, http.StatusBadRequest, form)
	default:
		pc.discardImage(input.Image)
		pc.sendError(w, r, err)
	}
}

// readPostForm parses text, group and an optional image upload. Form-level
// problems come back as field errors; a stored image is returned in Image
// so callers can discard it if the post is rejected.
func (pc *PostController) readPostForm(r *http.Request) (services.PostInput, map[string]string) {
	errs := map[string]string{}
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		errs["__all__"] = "The submitted form could not be read."
		return services.PostInput{}, errs
	}

	input := services.PostInput{Text: r.FormValue("text")}
	if raw := strings.TrimSpace(r.FormValue("group")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			errs["group"] = "Select a valid choice. That choice is not one of the available choices."
		} else {
			input.GroupID = &id
		}
	}

	if r.MultipartForm == nil {
		return input, errs
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, errs
	}
	if err != nil {
		errs["image"] = "The submitted file is empty or could not be read."
		return input, errs
	}
	defer file.Close()

	if len(errs) > 0 {
		return input, errs
	}
	rel, err := pc.media.Save(file, header)
	switch {
	case errors.Is(err, media.ErrTooLarge), errors.Is(err, media.ErrInvalidType):
		errs["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	case err != nil:
		pc.logger.Error("image upload failed", "error", err)
		errs["image"] = "The image could not be saved."
	default:
		input.Image = rel
	}
	return input, errs
}

// discardImage removes an upload that belongs to a rejected submission.
func (pc *PostController) discardImage(rel string) {
	if err := pc.media.Delete(rel); err != nil {
		pc.logger.Warn("could not remove rejected upload", "image", rel, "error", err)
	}
}

func derefID(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}
