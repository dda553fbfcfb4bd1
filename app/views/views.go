// Package views renders the embedded HTML templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"yatube/app/models"
)

//go:embed templates
var files embed.FS

// Pages that can be rendered. Each is parsed together with the layout and
// the shared includes.
const (
	Index      = "index"
	GroupList  = "group_list"
	Profile    = "profile"
	PostDetail = "post_detail"
	PostForm   = "create_post"
	Follow     = "follow"
	Login      = "login"
	Signup     = "signup"
	Error      = "error"
)

var pages = []string{Index, GroupList, Profile, PostDetail, PostForm, Follow, Login, Signup, Error}

// Base carries what the layout needs on every page.
type Base struct {
	CurrentUser *models.User
	Title       string
}

// Renderer executes named pages into responses.
type Renderer struct {
	templates map[string]*template.Template
	mediaURL  string
}

// New parses every page. mediaURL is the public prefix of uploaded files.
func New(mediaURL string) (*Renderer, error) {
	r := &Renderer{templates: map[string]*template.Template{}, mediaURL: mediaURL}
	funcs := template.FuncMap{
		"media": r.media,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"truncate": func(n int, s string) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "…"
		},
		"pageURL": func(n int) string {
			return fmt.Sprintf("?page=%d", n)
		},
	}

	includes, err := fs.Glob(files, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		patterns := append([]string{"templates/layout.html", "templates/" + page + ".html"}, includes...)
		t, err := template.New(page).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

func (r *Renderer) media(rel string) string {
	if rel == "" {
		return ""
	}
	return path.Join(r.mediaURL, rel)
}

// Render writes page with the given status. The page is rendered into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// ErrorPage is the data of the error page.
type ErrorPage struct {
	Base
	Status  int
	Message string
}

// StatusText is the heading shown for an error status.
func (e ErrorPage) StatusText() string {
	return strings.TrimSpace(fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)))
}
