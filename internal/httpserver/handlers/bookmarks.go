package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/logger"
)

type createRequest struct {
	Folder     bool   `json:"folder"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	IsFavorite bool   `json:"is_favorite"`
	ParentID   string `json:"parent_id"`
	Index      *int   `json:"index"`
}

type updateRequest struct {
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	IsFavorite *bool   `json:"is_favorite"`
}

type moveRequest struct {
	IDs      []string `json:"ids"`
	Index    *int     `json:"index"`
	ParentID string   `json:"parent_id"`
}

func parseFetchType(v string) (db.FetchType, error) {
	switch strings.ToLower(v) {
	case "", "top", "tree":
		return db.FetchTopLevelEntities, nil
	case "bookmarks", "flat":
		return db.FetchBookmarks, nil
	case "favorites":
		return db.FetchFavorites, nil
	}
	return 0, fmt.Errorf("unknown type %q", v)
}

// ListBookmarks serves the tree, the flat list or the favorites. A q
// parameter switches to search.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		if q := strings.TrimSpace(query.Get("q")); q != "" {
			limit, _ := strconv.Atoi(query.Get("limit"))
			results, err := d.Manager.Search(ctx, q, limit)
			if err != nil {
				writeError(w, d, err)
				return
			}
			nodes := make([]db.Node, 0, len(results))
			for _, b := range results {
				nodes = append(nodes, b)
			}
			writeJSON(w, http.StatusOK, toJSONList(nodes))
			return
		}

		t, err := parseFetchType(query.Get("type"))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		list := d.Manager.List()
		if list == nil {
			if err := d.Manager.LoadBookmarks(ctx); err != nil {
				writeError(w, d, err)
				return
			}
			list = d.Manager.List()
		}

		var nodes []db.Node
		switch t {
		case db.FetchTopLevelEntities:
			nodes = list.TopLevel
		case db.FetchFavorites:
			nodes = list.Favorites
		case db.FetchBookmarks:
			for _, u := range list.URLs() {
				if b, ok := list.Bookmark(u); ok {
					nodes = append(nodes, b)
				}
			}
		}
		writeJSON(w, http.StatusOK, toJSONList(nodes))
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		ctx := r.Context()

		var node db.Node
		var err error
		if req.Folder {
			node, err = d.Manager.MakeFolder(ctx, req.Title, req.ParentID)
		} else {
			node, err = d.Manager.MakeBookmark(ctx, req.URL, req.Title, req.IsFavorite, req.ParentID, req.Index)
		}
		if err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("bookmark created", logger.String("id", node.NodeID()))
		writeJSON(w, http.StatusCreated, toJSON(node))
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		ctx := r.Context()

		n, ok := d.Manager.List().Node(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found: " + id})
			return
		}

		switch n := n.(type) {
		case db.Folder:
			if req.URL != nil || req.IsFavorite != nil {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "folders have no url or favorite flag"})
				return
			}
			if req.Title != nil {
				n.Title = *req.Title
				if err := d.Manager.Update(ctx, n); err != nil {
					writeError(w, d, err)
					return
				}
			}
		case db.Bookmark:
			if req.URL != nil {
				updated, err := d.Manager.UpdateURL(ctx, id, *req.URL)
				if err != nil {
					writeError(w, d, err)
					return
				}
				n = updated
			}
			if req.Title != nil || req.IsFavorite != nil {
				if req.Title != nil {
					n.Title = *req.Title
				}
				if req.IsFavorite != nil {
					n.IsFavorite = *req.IsFavorite
				}
				if err := d.Manager.Update(ctx, n); err != nil {
					writeError(w, d, err)
					return
				}
			}
		}

		updated, _ := d.Manager.List().Node(id)
		writeJSON(w, http.StatusOK, toJSON(updated))
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Manager.List().Node(id); !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found: " + id})
			return
		}
		if err := d.Manager.Remove(r.Context(), []string{id}); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func MoveBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		if len(req.IDs) == 0 {
			badRequest(w, "ids is required")
			return
		}
		if err := d.Manager.Move(r.Context(), req.IDs, req.Index, req.ParentID); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func MoveFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		if len(req.IDs) == 0 {
			badRequest(w, "ids is required")
			return
		}
		if err := d.Manager.MoveFavorites(r.Context(), req.IDs, req.Index); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
