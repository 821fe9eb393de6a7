package manager

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/importer"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := db.NewStore(t.TempDir(), db.Options{Logger: logger.NewNop()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := New(store, logger.NewNop())
	require.NoError(t, m.LoadBookmarks(context.Background()))
	return m
}

func TestMakeBookmark(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	b, err := m.MakeBookmark(ctx, "https://go.dev/", "Go", true, "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, db.RootFolderUUID, b.ParentFolderUUID)

	assert.True(t, m.IsURLBookmarked("https://go.dev/"))
	assert.True(t, m.IsURLBookmarked("HTTPS://GO.DEV/"))
	assert.True(t, m.IsURLFavorited("https://go.dev/"))
	assert.False(t, m.IsURLBookmarked("https://other.dev/"))

	got, ok := m.GetBookmark("https://go.dev/")
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)

	_, err = m.MakeBookmark(ctx, "https://go.dev/", "Again", false, "", nil)
	assert.ErrorIs(t, err, ErrAlreadyBookmarked)
	assert.Equal(t, 1, m.List().Len())
}

func TestMakeBookmark_Validation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name, url, title string
	}{
		{"empty url", "", "Title"},
		{"relative url", "/docs", "Title"},
		{"not a url", "not a url", "Title"},
		{"empty title", "https://go.dev/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MakeBookmark(ctx, tt.url, tt.title, false, "", nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := m.MakeFolder(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMakeBookmark_NotLoaded(t *testing.T) {
	store, err := db.NewStore(t.TempDir(), db.Options{Logger: logger.NewNop()})
	require.NoError(t, err)
	defer store.Close()

	_, err = New(store, nil).MakeBookmark(context.Background(), "https://go.dev/", "Go", false, "", nil)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestMakeFolderAndMove(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	f, err := m.MakeFolder(ctx, "Work", "")
	require.NoError(t, err)
	a, err := m.MakeBookmark(ctx, "https://a.com", "A", false, "", nil)
	require.NoError(t, err)
	b, err := m.MakeBookmark(ctx, "https://b.com", "B", false, f.ID, nil)
	require.NoError(t, err)

	assert.True(t, m.CanMove(ctx, a.ID, f.ID))
	assert.False(t, m.CanMove(ctx, f.ID, f.ID))

	zero := 0
	require.NoError(t, m.Move(ctx, []string{a.ID}, &zero, f.ID))

	n, ok := m.List().Node(f.ID)
	require.True(t, ok)
	children := n.(db.Folder).Children
	require.Len(t, children, 2)
	assert.Equal(t, a.ID, children[0].NodeID())
	assert.Equal(t, b.ID, children[1].NodeID())
	require.Len(t, m.List().TopLevel, 1)
}

func TestUpdateURL(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	a, err := m.MakeBookmark(ctx, "https://a.com", "A", false, "", nil)
	require.NoError(t, err)
	_, err = m.MakeBookmark(ctx, "https://b.com", "B", false, "", nil)
	require.NoError(t, err)

	updated, err := m.UpdateURL(ctx, a.ID, "https://a2.com")
	require.NoError(t, err)
	assert.Equal(t, "https://a2.com", updated.URL)
	assert.True(t, m.IsURLBookmarked("https://a2.com"))
	assert.False(t, m.IsURLBookmarked("https://a.com"))

	_, err = m.UpdateURL(ctx, a.ID, "https://b.com")
	assert.ErrorIs(t, err, ErrAlreadyBookmarked)

	_, err = m.UpdateURL(ctx, a.ID, "nope")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.UpdateURL(ctx, "missing", "https://c.com")
	assert.ErrorIs(t, err, ErrNotBookmarked)
}

func TestToggleFavoriteAndMoveFavorites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	a, err := m.MakeBookmark(ctx, "https://a.com", "A", true, "", nil)
	require.NoError(t, err)
	b, err := m.MakeBookmark(ctx, "https://b.com", "B", false, "", nil)
	require.NoError(t, err)

	toggled, err := m.ToggleFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)
	require.Len(t, m.List().Favorites, 2)

	zero := 0
	require.NoError(t, m.MoveFavorites(ctx, []string{b.ID}, &zero))
	assert.Equal(t, b.ID, m.List().Favorites[0].NodeID())

	_, err = m.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, m.IsURLFavorited("https://a.com"))
	require.Len(t, m.List().Favorites, 1)
}

func TestUpdateAndRemove(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	f, err := m.MakeFolder(ctx, "Old", "")
	require.NoError(t, err)
	_, err = m.MakeBookmark(ctx, "https://a.com", "A", false, f.ID, nil)
	require.NoError(t, err)

	f.Title = "New"
	require.NoError(t, m.Update(ctx, f))
	n, ok := m.List().Node(f.ID)
	require.True(t, ok)
	assert.Equal(t, "New", n.NodeTitle())

	f.Title = ""
	assert.ErrorIs(t, m.Update(ctx, f), ErrValidation)

	require.NoError(t, m.Remove(ctx, []string{f.ID}))
	assert.False(t, m.IsURLBookmarked("https://a.com"))
	assert.Empty(t, m.List().TopLevel)
}

func TestAllHosts(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, u := range []string{"https://go.dev/doc", "https://GO.dev/blog", "http://example.com:8080/x"} {
		_, err := m.MakeBookmark(ctx, u, u, false, "", nil)
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"go.dev", "example.com"}, m.AllHosts())
}

func TestImportAndExport(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "Bookmarks")
	require.NoError(t, os.WriteFile(path, []byte(`{"roots": {
		"bookmark_bar": {"children": [{"type": "url", "name": "Go", "url": "https://go.dev/"}]},
		"other": {"children": []}
	}}`), 0o644))

	stats, err := m.Import(ctx, sources.NewChromiumReader(path), importer.Options{Silent: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Result.Successful)
	assert.True(t, m.IsURLFavorited("https://go.dev/"))

	var buf bytes.Buffer
	require.NoError(t, m.Export(ctx, &buf))
	assert.Contains(t, buf.String(), `duckduckgo:favorite="true">Go</A>`)

	require.NoError(t, m.Reset(ctx))
	assert.Zero(t, m.List().Len())
}
