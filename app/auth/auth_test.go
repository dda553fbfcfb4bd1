package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[int]*models.User

func (s stubUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func newTestManager() *SessionManager {
	return NewSessionManager([]byte("test-secret"), time.Hour, stubUsers{1: {ID: 1, Username: "leo"}})
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken(1)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionManager([]byte("other"), time.Hour, nil)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := newTestManager()
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	m := newTestManager()
	var seen *models.User
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
	}))

	t.Run("valid session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, m.Login(rec, &models.User{ID: 1}))
		cookie := rec.Result().Cookies()[0]
		assert.True(t, cookie.HttpOnly)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
		assert.Equal(t, "leo", seen.Username)
	})

	t.Run("tampered cookie is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, seen)
	})

	t.Run("deleted user is anonymous", func(t *testing.T) {
		token, err := m.GenerateToken(7)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, seen)
	})
}

func TestLogout(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestManager().Logout(rec)
	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestRequireLogin(t *testing.T) {
	gate := RequireLogin("/auth/login/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create/", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login/?next=/create/", rec.Header().Get("Location"))
	})

	t.Run("authenticated passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/create/", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1}))
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/posts/1/edit/", LoginRedirectURL("/auth/login/", "/posts/1/edit/"))
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginRedirectURL("/auth/login/", "/follow/?page=2"))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/follow/", SafeNext("/follow/", "/"))
	assert.Equal(t, "/", SafeNext("https://evil.example", "/"))
	assert.Equal(t, "/", SafeNext("//evil.example", "/"))
	assert.Equal(t, "/", SafeNext("", "/"))
}
