package handlers

import (
	"time"

	"github.com/user/bookmarks/internal/db"
)

// nodeJSON is the wire form of a bookmark or folder.
type nodeJSON struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url,omitempty"`
	IsFavorite bool       `json:"is_favorite,omitempty"`
	ParentID   string     `json:"parent_id,omitempty"`
	DateAdded  time.Time  `json:"date_added"`
	Children   []nodeJSON `json:"children,omitempty"`
}

func toJSON(n db.Node) nodeJSON {
	switch n := n.(type) {
	case db.Bookmark:
		return nodeJSON{
			Type:       "bookmark",
			ID:         n.ID,
			Title:      n.Title,
			URL:        n.URL,
			IsFavorite: n.IsFavorite,
			ParentID:   n.ParentFolderUUID,
			DateAdded:  n.DateAdded,
		}
	case db.Folder:
		out := nodeJSON{
			Type:      "folder",
			ID:        n.ID,
			Title:     n.Title,
			ParentID:  n.ParentFolderUUID,
			DateAdded: n.DateAdded,
		}
		out.Children = toJSONList(n.Children)
		return out
	}
	return nodeJSON{}
}

func toJSONList(nodes []db.Node) []nodeJSON {
	out := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toJSON(n))
	}
	return out
}
