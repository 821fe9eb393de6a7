package sources

import (
	"context"

	"github.com/user/bookmarks/internal/db"
)

// Reader parses one external bookmark export.
type Reader interface {
	// Name returns the reader identifier (html, chromium, firefox, homepage)
	Name() string
	// Source is the import source the parsed export belongs to. Readers that
	// detect the origin from the content only know it after Read.
	Source() db.ImportSource
	// Read parses the export into an importable tree
	Read(ctx context.Context) (*db.ImportedBookmarks, error)
	// Available checks that the export file exists
	Available() bool
}

func folder(name string, children []db.ImportedNode) db.ImportedNode {
	return db.ImportedNode{Name: name, IsFolder: true, Children: children}
}
