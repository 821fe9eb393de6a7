package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/httpserver/handlers"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/api/import/reload", handlers.Reload(d))
}
