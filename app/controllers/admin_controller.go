package controllers

import (
	"log/slog"
	"net/http"

	"yatube/app/cache"
)

// AdminController exposes maintenance operations behind the admin token
type AdminController struct {
	cache  cache.Cache
	logger *slog.Logger
}

func NewAdminController(c cache.Cache, logger *slog.Logger) *AdminController {
	return &AdminController{cache: c, logger: logger}
}

// ClearCache drops every cached response
func (ac *AdminController) ClearCache(w http.ResponseWriter, r *http.Request) {
	ac.cache.Clear()
	ac.logger.Info("response cache cleared")
	w.WriteHeader(http.StatusNoContent)
}
