package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// base holds what every controller needs to answer a request.
type base struct {
	views  *views.Renderer
	logger *slog.Logger
}

func (b *base) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := b.views.Render(w, status, page, data); err != nil {
		b.logger.Error("render failed", "page", page, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// sendError renders the error page for err. Application errors keep their
// status; anything else is logged and reported as 500.
func (b *base) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.StatusOf(err)
	message := ""
	var appErr *services.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		b.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	b.render(w, r, status, views.Error, views.ErrorPage{
		Base:    baseData(r, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	b.sendError(w, r, &services.AppError{Code: services.ErrNotFound, Message: "page not found"})
}

// NotFound renders the 404 page for unmatched routes.
func NotFound(renderer *views.Renderer, logger *slog.Logger) http.Handler {
	b := &base{views: renderer, logger: logger}
	return http.HandlerFunc(b.notFound)
}

func baseData(r *http.Request, title string) views.Base {
	return views.Base{CurrentUser: auth.CurrentUser(r.Context()), Title: title}
}

// pathID reads a numeric route variable. The routes only match digits.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil
}

func varsOf(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func pageNumber(r *http.Request) int {
	return models.ParsePageNumber(r.URL.Query().Get("page"))
}

// currentUser is only called behind RequireLogin.
func currentUser(r *http.Request) *models.User {
	return auth.CurrentUser(r.Context())
}
