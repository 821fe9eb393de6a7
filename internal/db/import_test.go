package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bm(name, url string) ImportedNode {
	return ImportedNode{Name: name, URL: url}
}

func folder(name string, children ...ImportedNode) ImportedNode {
	return ImportedNode{Name: name, IsFolder: true, Children: children}
}

func export(bar, other []ImportedNode) *ImportedBookmarks {
	return &ImportedBookmarks{
		BookmarkBar:    ImportedNode{Name: "bar", IsFolder: true, Children: bar},
		OtherBookmarks: ImportedNode{Name: "other", IsFolder: true, Children: other},
	}
}

func findFolder(t *testing.T, nodes []Node, title string) Folder {
	t.Helper()
	for _, n := range nodes {
		if f, ok := n.(Folder); ok && f.Title == title {
			return f
		}
	}
	t.Fatalf("folder %q not found", title)
	return Folder{}
}

func TestImport_SafariIntoEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result, err := s.ImportBookmarks(ctx, export(
		[]ImportedNode{bm("A", "http://a.com")},
		[]ImportedNode{bm("B", "http://b.com")},
	), SourceSafari)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Successful: 2}, result)

	top, err := s.LoadAll(ctx, FetchTopLevelEntities)
	require.NoError(t, err)
	require.Len(t, top, 2)

	favs := findFolder(t, top, "Imported Favorites")
	require.Len(t, favs.Children, 1)
	a := favs.Children[0].(Bookmark)
	assert.Equal(t, "A", a.Title)
	assert.True(t, a.IsFavorite)

	b := top[1].(Bookmark)
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, RootFolderUUID, b.ParentFolderUUID)
	assert.False(t, b.IsFavorite)
}

func TestImport_ChromiumIntoEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result, err := s.ImportBookmarks(ctx, export(
		[]ImportedNode{bm("A", "https://a.com"), folder("Dev", bm("Go", "https://go.dev"))},
		[]ImportedNode{bm("B", "https://b.com")},
	), SourceChromium)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Successful)

	assert.Equal(t, []string{"A", "Dev", "Other Bookmarks"}, childTitles(t, s, ""))
	// only direct bar bookmarks become favorites
	assert.Equal(t, []string{"A"}, favoriteTitles(t, s))

	top, err := s.LoadAll(ctx, FetchTopLevelEntities)
	require.NoError(t, err)
	other := findFolder(t, top, "Other Bookmarks")
	require.Len(t, other.Children, 1)
	assert.Equal(t, "B", other.Children[0].NodeTitle())
}

func TestImport_DuckDuckGoFavorites(t *testing.T) {
	s := newTestStore(t)

	fav := bm("Fav", "https://fav.com")
	fav.IsDDGFavorite = true
	result, err := s.ImportBookmarks(context.Background(), export(nil,
		[]ImportedNode{bm("Plain", "https://plain.com"), folder("F", fav)},
	), SourceDuckDuckGoWebKit)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)

	assert.Equal(t, []string{"Plain", "F"}, childTitles(t, s, ""))
	assert.Equal(t, []string{"Fav"}, favoriteTitles(t, s))
}

func TestImport_NonEmptyStoreIsQuarantined(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveBookmark(t, s, "existing", "Existing", "https://existing.com", "", false)

	fav := bm("DDG", "https://ddg.com")
	fav.IsDDGFavorite = true
	result, err := s.ImportBookmarks(ctx, export(
		[]ImportedNode{bm("A", "https://a.com"), fav},
		[]ImportedNode{bm("B", "https://b.com")},
	), SourceFirefox)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Successful)

	assert.Equal(t, []string{"Existing", "Imported from Firefox"}, childTitles(t, s, ""))
	assert.Empty(t, favoriteTitles(t, s))

	top, err := s.LoadAll(ctx, FetchTopLevelEntities)
	require.NoError(t, err)
	imported := findFolder(t, top, "Imported from Firefox")
	assert.Len(t, imported.Children, 3)
}

func TestImport_DuplicatesAreSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveBookmark(t, s, "existing", "Existing", "https://dup.com", "", false)

	ib := export(nil, []ImportedNode{bm("Dup", "https://dup.com"), bm("New", "https://new.com")})

	result, err := s.ImportBookmarks(ctx, ib, SourceChromium)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Successful: 1, Duplicates: 1}, result)

	// importing the same export again adds nothing
	result, err = s.ImportBookmarks(ctx, ib, SourceChromium)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Successful: 0, Duplicates: 2}, result)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM bookmark_entities WHERE url = ?`, "https://dup.com").Scan(&n))
	assert.Equal(t, 1, n)

	// the second, fully duplicate import leaves no empty folder behind
	assert.Equal(t, []string{"Existing", "Imported from Chrome"}, childTitles(t, s, ""))
}

func TestImport_EmptyFoldersArePruned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result, err := s.ImportBookmarks(ctx, export(
		[]ImportedNode{
			folder("Empty"),
			folder("Nested", folder("Deeper", folder("Deepest"))),
			folder("Kept", folder("Inner", bm("A", "https://a.com")), folder("Gone")),
		},
		[]ImportedNode{folder("OnlyBroken", bm("Broken", "not a url"))},
	), SourceChromium)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Successful: 1, Failed: 1}, result)

	assert.Equal(t, []string{"Kept"}, childTitles(t, s, ""))

	top, err := s.LoadAll(ctx, FetchTopLevelEntities)
	require.NoError(t, err)
	assertNoEmptyFolders(t, top)
}

func assertNoEmptyFolders(t *testing.T, nodes []Node) {
	t.Helper()
	for _, n := range nodes {
		if f, ok := n.(Folder); ok {
			assert.NotEmpty(t, f.Children, "folder %q is empty", f.Title)
			assertNoEmptyFolders(t, f.Children)
		}
	}
}

func TestImport_FailedNodes(t *testing.T) {
	s := newTestStore(t)

	result, err := s.ImportBookmarks(context.Background(), export(nil, []ImportedNode{
		bm("No URL", ""),
		bm("Relative", "/path/only"),
		bm("Ok", "https://ok.com"),
	}), SourceSafari)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Successful: 1, Failed: 2}, result)
}

func TestImport_SuccessfulMatchesCountDelta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveBookmark(t, s, "x", "X", "https://x.com", "", false)

	ib := export(
		[]ImportedNode{bm("A", "https://a.com"), bm("A again", "https://a.com")},
		[]ImportedNode{folder("F", bm("B", "https://b.com"), bm("X", "https://x.com"))},
	)
	before, err := s.BookmarkCount(ctx)
	require.NoError(t, err)

	result, err := s.ImportBookmarks(ctx, ib, SourceChromium)
	require.NoError(t, err)

	after, err := s.BookmarkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, after-before, result.Successful)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Duplicates)
}

func TestImport_RollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveBookmark(t, s, "x", "X", "https://x.com", "", false)

	before, err := s.BookmarkCount(ctx)
	require.NoError(t, err)

	boom := errors.New("disk full")
	s.beforeCommit = func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM bookmark_entities WHERE is_folder = 0`).Scan(&n); err != nil {
			return err
		}
		if n > before {
			return boom
		}
		return nil
	}

	ib := export([]ImportedNode{bm("A", "https://a.com")}, []ImportedNode{bm("B", "https://b.com")})
	result, err := s.ImportBookmarks(ctx, ib, SourceChromium)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ImportResult{Failed: 2}, result)

	s.beforeCommit = nil
	after, err := s.BookmarkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"X"}, childTitles(t, s, ""))
}

func TestImport_SyncedBookmarks(t *testing.T) {
	s := newTestStore(t)

	ib := export(nil, nil)
	ib.SyncedBookmarks = &ImportedNode{Name: "Mobile Bookmarks", Children: []ImportedNode{bm("M", "https://m.com")}}

	result, err := s.ImportBookmarks(context.Background(), ib, SourceFirefox)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, []string{"Mobile Bookmarks"}, childTitles(t, s, ""))
}

func TestImportResult_Add(t *testing.T) {
	r := ImportResult{Successful: 1, Duplicates: 2, Failed: 3}
	r.Add(ImportResult{Successful: 10, Duplicates: 20, Failed: 30})
	assert.Equal(t, ImportResult{Successful: 11, Duplicates: 22, Failed: 33}, r)
}

func TestImportedBookmarks_NumberOfBookmarks(t *testing.T) {
	ib := export(
		[]ImportedNode{bm("A", "a"), folder("F", bm("B", "b"), folder("G", bm("C", "c")))},
		[]ImportedNode{bm("D", "d")},
	)
	ib.SyncedBookmarks = &ImportedNode{Children: []ImportedNode{bm("E", "e")}}
	assert.Equal(t, 5, ib.NumberOfBookmarks())

	var empty *ImportedBookmarks
	assert.Zero(t, empty.NumberOfBookmarks())
}

func TestParseImportSource(t *testing.T) {
	for in, want := range map[string]ImportSource{
		"safari": SourceSafari, "Chrome": SourceChromium, "firefox": SourceFirefox,
		"ddg": SourceDuckDuckGoWebKit, "html": SourceBookmarksHTML,
	} {
		got, err := ParseImportSource(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseImportSource("opera")
	assert.Error(t, err)
}
