package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/media"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/handlers"
)

const shutdownTimeout = 10 * time.Second

// RunAppServer serves the site until ctx is cancelled, then drains open
// requests and closes the store.
func RunAppServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	handler, cleanup, err := newHandler(cfg, b.store, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting yatube", "addr", srv.Addr, "store", b.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// newHandler assembles the site over store. cleanup stops background work
// started for the handler.
func newHandler(cfg config.Config, store *repositories.Store, logger *slog.Logger) (http.Handler, func(), error) {
	renderer, err := views.New("/media/")
	if err != nil {
		return nil, nil, err
	}
	responses, err := cache.NewRistrettoCache(cfg.CacheMaxBytes)
	if err != nil {
		return nil, nil, err
	}

	svc := services.New(store, services.Options{PageSize: cfg.PageSize})
	sessions := auth.NewSessionManager([]byte(cfg.SecretKey), cfg.SessionTTL, svc.Users)
	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)

	router := routes.SetupRoutes(routes.Deps{
		Services:     svc,
		Views:        renderer,
		Media:        media.NewStore(cfg.MediaDir),
		Sessions:     sessions,
		Cache:        responses,
		Logger:       logger,
		CacheTTL:     cfg.CacheTTL,
		LoginURL:     cfg.LoginURL,
		AdminToken:   cfg.AdminToken,
		LoginLimiter: limiter,
	})

	cleanup := func() {
		limiter.Stop()
		responses.Close()
	}
	return handlers.ProxyHeaders(handlers.CompressHandler(router)), cleanup, nil
}
