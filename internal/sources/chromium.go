package sources

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/user/bookmarks/internal/db"
)

// ChromiumReader reads the "Bookmarks" JSON file of Chrome, Brave, Edge and
// other Chromium browsers.
type ChromiumReader struct {
	path string
}

func NewChromiumReader(path string) *ChromiumReader {
	return &ChromiumReader{path: path}
}

func (r *ChromiumReader) Name() string { return "chromium" }

func (r *ChromiumReader) Source() db.ImportSource { return db.SourceChromium }

func (r *ChromiumReader) Available() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

func (r *ChromiumReader) Read(ctx context.Context) (*db.ImportedBookmarks, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	return parseChromium(data)
}

func parseChromium(data []byte) (*db.ImportedBookmarks, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid chromium bookmarks json")
	}
	roots := gjson.GetBytes(data, "roots")
	if !roots.IsObject() {
		return nil, fmt.Errorf("chromium bookmarks json has no roots")
	}

	imported := &db.ImportedBookmarks{
		BookmarkBar:    chromiumFolder(roots.Get("bookmark_bar")),
		OtherBookmarks: chromiumFolder(roots.Get("other")),
	}
	if synced := roots.Get("synced"); synced.Exists() {
		s := chromiumFolder(synced)
		if len(s.Children) > 0 {
			imported.SyncedBookmarks = &s
		}
	}
	return imported, nil
}

func chromiumFolder(node gjson.Result) db.ImportedNode {
	f := folder(node.Get("name").String(), nil)
	node.Get("children").ForEach(func(_, child gjson.Result) bool {
		switch child.Get("type").String() {
		case "folder":
			f.Children = append(f.Children, chromiumFolder(child))
		case "url":
			f.Children = append(f.Children, db.ImportedNode{
				Name: child.Get("name").String(),
				URL:  child.Get("url").String(),
			})
		}
		return true
	})
	return f
}
