package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

const export = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>
    <DL><p>
        <DT><A HREF="https://go.dev/">Go</A>
    </DL><p>
    <DT><A HREF="https://example.com/">Example</A>
</DL><p>
`

type fakeReader struct {
	name      string
	available bool
	imported  *db.ImportedBookmarks
	err       error
}

func (r *fakeReader) Name() string            { return r.name }
func (r *fakeReader) Source() db.ImportSource { return db.SourceChromium }
func (r *fakeReader) Available() bool         { return r.available }
func (r *fakeReader) Read(ctx context.Context) (*db.ImportedBookmarks, error) {
	return r.imported, r.err
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.NewStore(t.TempDir(), db.Options{Logger: logger.NewNop()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.html")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	return path
}

func TestImport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	stats, err := Import(ctx, store, sources.NewHTMLReader(writeExport(t)), Options{Out: &out, Verbose: true})
	require.NoError(t, err)

	assert.Equal(t, "html", stats.Reader)
	assert.Equal(t, db.SourceBookmarksHTML, stats.Source)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, db.ImportResult{Successful: 2}, stats.Result)
	assert.Contains(t, out.String(), "Reading html export")
	assert.Contains(t, out.String(), "Bookmarks bar: 1 items")

	count, err := store.BookmarkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	at, source, err := LastImport(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "html", source)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestImport_Silent(t *testing.T) {
	store := newTestStore(t)
	var out bytes.Buffer

	_, err := Import(context.Background(), store, sources.NewHTMLReader(writeExport(t)), Options{Out: &out, Silent: true})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestImport_ReaderErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := Import(ctx, store, &fakeReader{name: "gone"}, Options{Silent: true})
	assert.Error(t, err)

	boom := errors.New("corrupt")
	_, err = Import(ctx, store, &fakeReader{name: "broken", available: true, err: boom}, Options{Silent: true})
	assert.ErrorIs(t, err, boom)

	at, _, err := LastImport(ctx, store)
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestImportAll_ContinuesAfterFailure(t *testing.T) {
	store := newTestStore(t)
	var out bytes.Buffer

	ok := &fakeReader{name: "chromium", available: true, imported: &db.ImportedBookmarks{
		BookmarkBar:    db.ImportedNode{IsFolder: true},
		OtherBookmarks: db.ImportedNode{IsFolder: true, Children: []db.ImportedNode{{Name: "A", URL: "https://a.com"}}},
	}}
	readers := []sources.Reader{&fakeReader{name: "missing"}, ok}

	all, err := ImportAll(context.Background(), store, readers, Options{Out: &out})
	assert.Error(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].Result.Successful)
	assert.Contains(t, out.String(), "Error importing from missing")
	assert.Contains(t, out.String(), "Imported 1 Chrome bookmarks")
}
