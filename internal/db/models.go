package db

import (
	"database/sql"
	"time"
)

const (
	// RootFolderUUID identifies the single top-level container.
	RootFolderUUID = "bookmarks_root"
	// FavoritesFolderUUID identifies the folder whose membership marks favorites.
	FavoritesFolderUUID = "favorites_root"

	rootFolderTitle      = "Root"
	favoritesFolderTitle = "Favorites"
)

// Node is either a Bookmark or a Folder. The set is closed: consumers switch
// on the concrete type and need no fallback case.
type Node interface {
	NodeID() string
	NodeTitle() string
	ParentUUID() string
	node()
}

type Bookmark struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	IsFavorite       bool      `json:"is_favorite"`
	ParentFolderUUID string    `json:"parent_folder_uuid,omitempty"`
	DateAdded        time.Time `json:"date_added"`
}

func (b Bookmark) NodeID() string     { return b.ID }
func (b Bookmark) NodeTitle() string  { return b.Title }
func (b Bookmark) ParentUUID() string { return b.ParentFolderUUID }
func (Bookmark) node()                {}

type Folder struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ParentFolderUUID string    `json:"parent_folder_uuid,omitempty"`
	Children         []Node    `json:"children,omitempty"`
	DateAdded        time.Time `json:"date_added"`
}

func (f Folder) NodeID() string     { return f.ID }
func (f Folder) NodeTitle() string  { return f.Title }
func (f Folder) ParentUUID() string { return f.ParentFolderUUID }
func (Folder) node()                {}

// FetchType selects what LoadAll returns.
type FetchType int

const (
	// FetchBookmarks returns every leaf bookmark in insertion order.
	FetchBookmarks FetchType = iota
	// FetchTopLevelEntities returns the children of the root folder with their subtrees.
	FetchTopLevelEntities
	// FetchFavorites returns favorites in favorites order.
	FetchFavorites
)

func (t FetchType) String() string {
	switch t {
	case FetchBookmarks:
		return "bookmarks"
	case FetchTopLevelEntities:
		return "top-level"
	case FetchFavorites:
		return "favorites"
	default:
		return "unknown"
	}
}

// entity is one persisted row of bookmark_entities.
type entity struct {
	UUID            string
	IsFolder        bool
	Title           sql.NullString
	URL             sql.NullString
	Parent          sql.NullString
	Position        int
	DateAdded       time.Time
	PendingDeletion bool
}

func (e *entity) parentUUID() string {
	if e.Parent.Valid {
		return e.Parent.String
	}
	return ""
}

// isSystemFolder reports whether e is the root or the favorites folder.
func (e *entity) isSystemFolder() bool {
	return e.UUID == RootFolderUUID || e.UUID == FavoritesFolderUUID
}
