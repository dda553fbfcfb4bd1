// Package routes wires controllers and middleware into the site's URL table.
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/media"
	"yatube/app/middleware"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// Deps are the collaborators the routes are built from. A nil Cache serves
// the index uncached.
type Deps struct {
	Services *services.Services
	Views    *views.Renderer
	Media    *media.Store
	Sessions *auth.SessionManager
	Cache    cache.Cache
	Logger   *slog.Logger

	CacheTTL   time.Duration
	LoginURL   string
	AdminToken string
	// LoginLimiter throttles login attempts; nil disables it.
	LoginLimiter *middleware.RateLimiter
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(d Deps) *mux.Router {
	responses := d.Cache
	if responses == nil {
		responses = cache.Nop{}
	}
	if d.LoginURL == "" {
		d.LoginURL = "/auth/login/"
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Recoverer(d.Logger))
	router.Use(middleware.Logger(d.Logger))
	router.Use(d.Sessions.Middleware)
	router.NotFoundHandler = controllers.NotFound(d.Views, d.Logger)

	postController := controllers.NewPostController(d.Services, d.Views, d.Media, d.Logger)
	commentController := controllers.NewCommentController(d.Services, postController)
	followController := controllers.NewFollowController(d.Services, d.Views, d.Logger)
	authController := controllers.NewAuthController(d.Services, d.Views, d.Sessions, d.Logger)
	adminController := controllers.NewAdminController(responses, d.Logger)

	loginRequired := auth.RequireLogin(d.LoginURL)
	private := func(h http.HandlerFunc) http.Handler {
		return loginRequired(h)
	}

	// Uploaded images
	router.PathPrefix("/media/").Handler(d.Media.Handler("/media/")).Methods("GET", "HEAD")

	// Feeds
	var index http.Handler = http.HandlerFunc(postController.Index)
	if d.Cache != nil {
		index = middleware.CacheResponse(d.Cache, d.CacheTTL, d.Logger)(index)
	}
	router.Handle("/", index).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	router.Handle("/follow/", private(followController.FollowIndex)).Methods("GET")

	// Posts
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET")
	router.Handle("/create/", private(postController.Create)).Methods("GET", "POST")
	router.Handle("/posts/{id:[0-9]+}/edit/", private(postController.Edit)).Methods("GET", "POST")
	router.Handle("/posts/{id:[0-9]+}/comment/", private(commentController.AddComment)).Methods("GET", "POST")

	// Subscriptions
	router.Handle("/profile/{username}/follow/", private(followController.Follow)).Methods("GET")
	router.Handle("/profile/{username}/unfollow/", private(followController.Unfollow)).Methods("GET")

	// Accounts
	login := http.Handler(http.HandlerFunc(authController.Login))
	if d.LoginLimiter != nil {
		login = limitPost(d.LoginLimiter, login)
	}
	router.Handle("/auth/login/", login).Methods("GET", "POST")
	router.HandleFunc("/auth/logout/", authController.Logout).Methods("GET")
	router.HandleFunc("/auth/signup/", authController.Signup).Methods("GET", "POST")

	// Operator endpoints
	router.Handle("/admin/cache/clear/", middleware.AdminToken(d.AdminToken)(http.HandlerFunc(adminController.ClearCache))).Methods("POST")

	return router
}

// limitPost applies the limiter to form submissions only.
func limitPost(rl *middleware.RateLimiter, next http.Handler) http.Handler {
	limited := rl.Limit(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
