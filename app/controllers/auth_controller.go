package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"yatube/app/auth"
	"yatube/app/services"
	"yatube/app/views"
)

// AuthController serves the login, logout and signup pages
type AuthController struct {
	base
	svc      *services.Services
	sessions *auth.SessionManager
}

func NewAuthController(svc *services.Services, renderer *views.Renderer, sessions *auth.SessionManager, logger *slog.Logger) *AuthController {
	return &AuthController{base: base{views: renderer, logger: logger}, svc: svc, sessions: sessions}
}

type loginPage struct {
	views.Base
	Next     string
	Username string
	Errors   map[string]string
}

// Login shows the login form and starts a session on valid credentials
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	data := loginPage{Base: baseData(r, "Log in"), Next: r.FormValue("next")}
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, views.Login, data)
		return
	}

	data.Username = strings.TrimSpace(r.FormValue("username"))
	user, err := ac.svc.Users.Authenticate(r.Context(), data.Username, r.FormValue("password"))
	if err != nil {
		var appErr *services.AppError
		if !errors.As(err, &appErr) || appErr.Code != services.ErrUnauthorized {
			ac.sendError(w, r, err)
			return
		}
		data.Errors = map[string]string{"__all__": appErr.Message}
		ac.render(w, r, http.StatusOK, views.Login, data)
		return
	}
	if err := ac.sessions.Login(w, user); err != nil {
		ac.sendError(w, r, err)
		return
	}
	ac.logger.Info("user logged in", "username", user.Username)
	http.Redirect(w, r, auth.SafeNext(data.Next, "/"), http.StatusFound)
}

// Logout ends the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.Logout(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

type signupPage struct {
	views.Base
	Username string
	Errors   map[string]string
}

// Signup registers a new user and logs them in
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	data := signupPage{Base: baseData(r, "Sign up")}
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, views.Signup, data)
		return
	}

	data.Username = strings.TrimSpace(r.FormValue("username"))
	user, err := ac.svc.Users.Register(r.Context(), data.Username, r.FormValue("password"))
	if err != nil {
		if services.IsErrorCode(err, services.ErrInvalidInput) || services.IsErrorCode(err, services.ErrDuplicate) {
			data.Errors = services.FieldErrorsOf(err)
			ac.render(w, r, http.StatusBadRequest, views.Signup, data)
			return
		}
		ac.sendError(w, r, err)
		return
	}
	if err := ac.sessions.Login(w, user); err != nil {
		ac.sendError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
