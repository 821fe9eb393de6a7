// Package manager is the consumer-facing layer over the bookmark store. It
// validates input and keeps an in-memory List that is reloaded after every
// mutation.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/export"
	"github.com/user/bookmarks/internal/importer"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

var (
	ErrAlreadyBookmarked = errors.New("url is already bookmarked")
	ErrNotBookmarked     = errors.New("bookmark not found")
	ErrNotLoaded         = errors.New("bookmarks not loaded")
)

type Manager struct {
	store *db.Store
	log   logger.Logger

	mu   sync.RWMutex
	list *List
}

func New(store *db.Store, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{store: store, log: log}
}

// LoadBookmarks replaces the list with a fresh snapshot of the store.
func (m *Manager) LoadBookmarks(ctx context.Context) error {
	bookmarks, err := m.store.LoadAll(ctx, db.FetchBookmarks)
	if err != nil {
		m.log.Error("failed to fetch bookmarks", logger.Error(err))
		return err
	}
	topLevel, err := m.store.LoadAll(ctx, db.FetchTopLevelEntities)
	if err != nil {
		m.log.Error("failed to fetch entities", logger.Error(err))
		return err
	}
	favorites, err := m.store.LoadAll(ctx, db.FetchFavorites)
	if err != nil {
		m.log.Error("failed to fetch favorites", logger.Error(err))
		return err
	}

	m.mu.Lock()
	m.list = newList(bookmarks, topLevel, favorites)
	m.mu.Unlock()
	return nil
}

// List returns the current snapshot, nil before the first load.
func (m *Manager) List() *List {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list
}

// reload refreshes the list after a mutation. A failed reload keeps the old
// snapshot and only logs.
func (m *Manager) reload(ctx context.Context) {
	if err := m.LoadBookmarks(ctx); err != nil {
		m.log.Warn("reload after change failed", logger.Error(err))
	}
}

func (m *Manager) IsURLBookmarked(rawURL string) bool {
	_, ok := m.List().Bookmark(rawURL)
	return ok
}

func (m *Manager) IsURLFavorited(rawURL string) bool {
	b, ok := m.List().Bookmark(rawURL)
	return ok && b.IsFavorite
}

func (m *Manager) GetBookmark(rawURL string) (db.Bookmark, bool) {
	return m.List().Bookmark(rawURL)
}

// AllHosts returns the distinct hosts of every bookmarked URL.
func (m *Manager) AllHosts() []string {
	return m.List().Hosts()
}

// MakeBookmark saves a new bookmark under parent (root when empty). A URL can
// only be bookmarked once.
func (m *Manager) MakeBookmark(ctx context.Context, rawURL, title string, isFavorite bool, parent string, index *int) (db.Bookmark, error) {
	req := bookmarkRequest{URL: rawURL, Title: title}
	if err := req.validate(); err != nil {
		return db.Bookmark{}, err
	}
	if m.List() == nil {
		return db.Bookmark{}, ErrNotLoaded
	}
	if m.IsURLBookmarked(rawURL) {
		m.log.Warn("url is already bookmarked", logger.String("url", rawURL))
		return db.Bookmark{}, fmt.Errorf("%w: %s", ErrAlreadyBookmarked, rawURL)
	}

	b := db.Bookmark{
		ID:               uuid.NewString(),
		Title:            title,
		URL:              rawURL,
		IsFavorite:       isFavorite,
		ParentFolderUUID: parent,
		DateAdded:        time.Now(),
	}
	if err := m.store.Save(ctx, b, parent, index); err != nil {
		return db.Bookmark{}, err
	}
	m.reload(ctx)

	if saved, ok := m.List().Node(b.ID); ok {
		return saved.(db.Bookmark), nil
	}
	return b, nil
}

// MakeFolder saves a new, empty folder under parent (root when empty).
func (m *Manager) MakeFolder(ctx context.Context, title, parent string) (db.Folder, error) {
	req := folderRequest{Title: title}
	if err := req.validate(); err != nil {
		return db.Folder{}, err
	}

	f := db.Folder{
		ID:               uuid.NewString(),
		Title:            title,
		ParentFolderUUID: parent,
		DateAdded:        time.Now(),
	}
	if err := m.store.Save(ctx, f, parent, nil); err != nil {
		return db.Folder{}, err
	}
	m.reload(ctx)

	if saved, ok := m.List().Node(f.ID); ok {
		return saved.(db.Folder), nil
	}
	return f, nil
}

func (m *Manager) Remove(ctx context.Context, ids []string) error {
	defer m.reload(ctx)
	return m.store.Remove(ctx, ids)
}

// Update writes title, url and favorite changes of an existing node.
func (m *Manager) Update(ctx context.Context, node db.Node) error {
	switch n := node.(type) {
	case db.Bookmark:
		req := bookmarkRequest{URL: n.URL, Title: n.Title}
		if err := req.validate(); err != nil {
			return err
		}
	case db.Folder:
		req := folderRequest{Title: n.Title}
		if err := req.validate(); err != nil {
			return err
		}
	}
	defer m.reload(ctx)
	return m.store.Update(ctx, node)
}

// UpdateURL points bookmark id at newURL, unless newURL is already bookmarked.
func (m *Manager) UpdateURL(ctx context.Context, id, newURL string) (db.Bookmark, error) {
	if err := validateURL(newURL); err != nil {
		return db.Bookmark{}, err
	}
	b, err := m.bookmark(id)
	if err != nil {
		return db.Bookmark{}, err
	}
	if b.URL == newURL {
		return b, nil
	}
	if m.IsURLBookmarked(newURL) {
		return db.Bookmark{}, fmt.Errorf("%w: %s", ErrAlreadyBookmarked, newURL)
	}

	b.URL = newURL
	if err := m.store.Update(ctx, b); err != nil {
		return db.Bookmark{}, err
	}
	m.reload(ctx)
	return b, nil
}

// ToggleFavorite flips the favorite flag of bookmark id.
func (m *Manager) ToggleFavorite(ctx context.Context, id string) (db.Bookmark, error) {
	b, err := m.bookmark(id)
	if err != nil {
		return db.Bookmark{}, err
	}
	b.IsFavorite = !b.IsFavorite
	if err := m.store.Update(ctx, b); err != nil {
		return db.Bookmark{}, err
	}
	m.reload(ctx)
	return b, nil
}

func (m *Manager) bookmark(id string) (db.Bookmark, error) {
	n, ok := m.List().Node(id)
	if !ok {
		return db.Bookmark{}, fmt.Errorf("%w: %s", ErrNotBookmarked, id)
	}
	b, ok := n.(db.Bookmark)
	if !ok {
		return db.Bookmark{}, fmt.Errorf("%w: %s is a folder", db.ErrBadObjectID, id)
	}
	return b, nil
}

// Add appends existing nodes to parent.
func (m *Manager) Add(ctx context.Context, ids []string, parent string) error {
	defer m.reload(ctx)
	return m.store.Add(ctx, ids, parent)
}

func (m *Manager) CanMove(ctx context.Context, id, parent string) bool {
	return m.store.CanMoveObject(ctx, id, parent)
}

func (m *Manager) Move(ctx context.Context, ids []string, index *int, parent string) error {
	defer m.reload(ctx)
	return m.store.Move(ctx, ids, index, parent)
}

func (m *Manager) MoveFavorites(ctx context.Context, ids []string, index *int) error {
	defer m.reload(ctx)
	return m.store.MoveFavorites(ctx, ids, index)
}

func (m *Manager) Search(ctx context.Context, query string, limit int) ([]db.Bookmark, error) {
	return m.store.Search(ctx, query, limit)
}

// Import reads an export through reader and merges it into the store.
func (m *Manager) Import(ctx context.Context, reader sources.Reader, opts importer.Options) (*importer.Stats, error) {
	if opts.Logger == nil {
		opts.Logger = m.log
	}
	defer m.reload(ctx)
	return importer.Import(ctx, m.store, reader, opts)
}

// Export writes the whole tree as a Netscape bookmark file.
func (m *Manager) Export(ctx context.Context, w io.Writer) error {
	topLevel, err := m.store.LoadAll(ctx, db.FetchTopLevelEntities)
	if err != nil {
		return err
	}
	favorites, err := m.store.LoadAll(ctx, db.FetchFavorites)
	if err != nil {
		return err
	}
	return export.WriteHTML(w, topLevel, favorites)
}

// Reset deletes every bookmark and folder.
func (m *Manager) Reset(ctx context.Context) error {
	defer m.reload(ctx)
	return m.store.ResetBookmarks(ctx)
}
