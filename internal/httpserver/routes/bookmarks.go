package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks, middleware.AllowContentType("application/json")) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Post("/move", handlers.MoveBookmarks(d))
		r.Patch("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
	})
	r.Post("/api/favorites/move", handlers.MoveFavorites(d))
}
