package controllers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// tinyGIF is a valid 1x1 GIF.
var tinyGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type testEnv struct {
	svc      *services.Services
	media    *media.Store
	sessions *auth.SessionManager
	router   *mux.Router
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := repositories.NewRepository("")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := services.New(repo.Store(), services.Options{
		PasswordCost: bcrypt.MinCost,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	})
	renderer, err := views.New("/media/")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := media.NewStore(t.TempDir())
	sessions := auth.NewSessionManager([]byte("test-secret"), time.Hour, svc.Users)

	posts := NewPostController(svc, renderer, store, logger)
	comments := NewCommentController(svc, posts)
	follows := NewFollowController(svc, renderer, logger)
	accounts := NewAuthController(svc, renderer, sessions, logger)
	admin := NewAdminController(cache.Nop{}, logger)

	r := mux.NewRouter()
	r.HandleFunc("/", posts.Index).Methods("GET")
	r.HandleFunc("/group/{slug}/", posts.GroupPosts).Methods("GET")
	r.HandleFunc("/profile/{username}/", posts.Profile).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/", posts.Show).Methods("GET")
	r.HandleFunc("/create/", posts.Create).Methods("GET", "POST")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", posts.Edit).Methods("GET", "POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", comments.AddComment).Methods("GET", "POST")
	r.HandleFunc("/follow/", follows.FollowIndex).Methods("GET")
	r.HandleFunc("/profile/{username}/follow/", follows.Follow).Methods("GET")
	r.HandleFunc("/profile/{username}/unfollow/", follows.Unfollow).Methods("GET")
	r.HandleFunc("/auth/login/", accounts.Login).Methods("GET", "POST")
	r.HandleFunc("/auth/logout/", accounts.Logout).Methods("GET")
	r.HandleFunc("/auth/signup/", accounts.Signup).Methods("GET", "POST")
	r.HandleFunc("/admin/cache/clear/", admin.ClearCache).Methods("POST")
	r.NotFoundHandler = NotFound(renderer, logger)

	return &testEnv{svc: svc, media: store, sessions: sessions, router: r}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.svc.Users.Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return u
}

func (e *testEnv) post(t *testing.T, author *models.User, text string, groupID *int) *models.Post {
	t.Helper()
	p, err := e.svc.Posts.CreatePost(context.Background(), author.ID, services.PostInput{Text: text, GroupID: groupID})
	require.NoError(t, err)
	return p
}

// do serves req as user, or anonymously when user is nil.
func (e *testEnv) do(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postMultipart(t *testing.T, target string, values url.Values, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
