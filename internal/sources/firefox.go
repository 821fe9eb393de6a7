package sources

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/bookmarks/internal/db"
)

// PlacesDatabaseName is the Firefox profile database holding bookmarks.
const PlacesDatabaseName = "places.sqlite"

const (
	firefoxRootGUID    = "root________"
	firefoxMenuGUID    = "menu________"
	firefoxToolbarGUID = "toolbar_____"
	firefoxTagsGUID    = "tags________"
	firefoxUnfiledGUID = "unfiled_____"
	firefoxMobileGUID  = "mobile______"

	mobileBookmarksTitle = "Mobile Bookmarks"
)

// FirefoxReader reads bookmarks from a Firefox profile's places.sqlite. The
// database is copied first since Firefox keeps it locked while running.
type FirefoxReader struct {
	path string
}

// NewFirefoxReader accepts either a profile directory or the database path.
func NewFirefoxReader(path string) *FirefoxReader {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, PlacesDatabaseName)
	}
	return &FirefoxReader{path: path}
}

func (r *FirefoxReader) Name() string { return "firefox" }

func (r *FirefoxReader) Source() db.ImportSource { return db.SourceFirefox }

func (r *FirefoxReader) Available() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

type firefoxFolder struct {
	id     int64
	title  string
	parent int64
	guid   string
}

type firefoxBookmark struct {
	title  sql.NullString
	url    string
	parent int64
}

type placesData struct {
	topLevel          []firefoxFolder
	foldersByParent   map[int64][]firefoxFolder
	bookmarksByFolder map[int64][]firefoxBookmark
}

func (r *FirefoxReader) Read(ctx context.Context) (*db.ImportedBookmarks, error) {
	tmp, err := copyToTemp(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to copy places database: %w", err)
	}
	defer os.RemoveAll(filepath.Dir(tmp))

	conn, err := sql.Open("sqlite3", "file:"+tmp+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	data, err := readPlaces(ctx, conn)
	if err != nil {
		return nil, err
	}
	return data.imported(), nil
}

func copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir, err := os.MkdirTemp("", "bookmarks-firefox")
	if err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(dir, PlacesDatabaseName))
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dst.Name(), nil
}

func readPlaces(ctx context.Context, conn *sql.DB) (*placesData, error) {
	var rootID int64
	err := conn.QueryRowContext(ctx, `SELECT id FROM moz_bookmarks WHERE guid = ?`, firefoxRootGUID).Scan(&rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to find firefox root entry: %w", err)
	}

	data := &placesData{
		foldersByParent:   make(map[int64][]firefoxFolder),
		bookmarksByFolder: make(map[int64][]firefoxBookmark),
	}

	data.topLevel, err = queryFolders(ctx, conn, `SELECT id, title, parent, guid FROM moz_bookmarks
		WHERE parent = ? AND type = 2 ORDER BY position`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefox top-level folders: %w", err)
	}

	var tagsID int64
	for _, f := range data.topLevel {
		if f.guid == firefoxTagsGUID {
			tagsID = f.id
		}
	}

	// Tags are stored as folders under the tags root, so skip them.
	folders, err := queryFolders(ctx, conn, `SELECT id, title, parent, guid FROM moz_bookmarks
		WHERE type = 2 AND title IS NOT NULL AND id != ? AND parent != ? ORDER BY position`, rootID, tagsID)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefox folders: %w", err)
	}
	for _, f := range folders {
		data.foldersByParent[f.parent] = append(data.foldersByParent[f.parent], f)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT moz_bookmarks.title, moz_places.url, moz_bookmarks.parent
		FROM moz_bookmarks
		INNER JOIN moz_places ON moz_bookmarks.fk = moz_places.id
		WHERE moz_bookmarks.type = 1
		ORDER BY moz_bookmarks.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefox bookmarks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b firefoxBookmark
		if err := rows.Scan(&b.title, &b.url, &b.parent); err != nil {
			return nil, err
		}
		if strings.HasPrefix(b.url, "place:") || strings.HasPrefix(b.url, "about:") {
			continue
		}
		data.bookmarksByFolder[b.parent] = append(data.bookmarksByFolder[b.parent], b)
	}
	return data, rows.Err()
}

func queryFolders(ctx context.Context, conn *sql.DB, query string, args ...any) ([]firefoxFolder, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []firefoxFolder
	for rows.Next() {
		var f firefoxFolder
		var title sql.NullString
		if err := rows.Scan(&f.id, &title, &f.parent, &f.guid); err != nil {
			return nil, err
		}
		f.title = title.String
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// imported maps the toolbar and menu to the bar, unfiled and unknown roots to
// other, and mobile to synced.
func (d *placesData) imported() *db.ImportedBookmarks {
	byGUID := make(map[string]firefoxFolder)
	var extra []firefoxFolder
	for _, f := range d.topLevel {
		switch f.guid {
		case firefoxMenuGUID, firefoxToolbarGUID, firefoxUnfiledGUID, firefoxMobileGUID:
			byGUID[f.guid] = f
		case firefoxTagsGUID:
		default:
			extra = append(extra, f)
		}
	}

	childrenOf := func(guid string) []db.ImportedNode {
		f, ok := byGUID[guid]
		if !ok {
			return nil
		}
		return d.children(f.id)
	}

	bar := append(childrenOf(firefoxToolbarGUID), childrenOf(firefoxMenuGUID)...)
	other := childrenOf(firefoxUnfiledGUID)
	for _, f := range extra {
		other = append(other, d.children(f.id)...)
	}

	imported := &db.ImportedBookmarks{
		BookmarkBar:    folder("bar", bar),
		OtherBookmarks: folder(otherBookmarksTitle, other),
	}
	if mobile := childrenOf(firefoxMobileGUID); len(mobile) > 0 {
		synced := folder(mobileBookmarksTitle, mobile)
		imported.SyncedBookmarks = &synced
	}
	return imported
}

// children lists sub-folders first, then bookmarks.
func (d *placesData) children(parent int64) []db.ImportedNode {
	var nodes []db.ImportedNode
	for _, f := range d.foldersByParent[parent] {
		nodes = append(nodes, folder(f.title, d.children(f.id)))
	}
	for _, b := range d.bookmarksByFolder[parent] {
		nodes = append(nodes, db.ImportedNode{Name: b.title.String, URL: b.url})
	}
	return nodes
}
