package db

import (
	"fmt"
	"strings"
)

// ImportSource is the browser or format an export came from. It decides where
// imported content is placed when the store is empty.
type ImportSource int

const (
	SourceDuckDuckGoWebKit ImportSource = iota
	SourceSafari
	SourceChromium
	SourceFirefox
	SourceBookmarksHTML
)

// Name is the display name used in "Imported from <name>".
func (s ImportSource) Name() string {
	switch s {
	case SourceDuckDuckGoWebKit:
		return "DuckDuckGo"
	case SourceSafari:
		return "Safari"
	case SourceChromium:
		return "Chrome"
	case SourceFirefox:
		return "Firefox"
	default:
		return "HTML"
	}
}

func (s ImportSource) String() string {
	switch s {
	case SourceDuckDuckGoWebKit:
		return "duckduckgo"
	case SourceSafari:
		return "safari"
	case SourceChromium:
		return "chromium"
	case SourceFirefox:
		return "firefox"
	default:
		return "html"
	}
}

// ParseImportSource maps a flag or config value to an ImportSource.
func ParseImportSource(v string) (ImportSource, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "duckduckgo", "ddg", "webkit":
		return SourceDuckDuckGoWebKit, nil
	case "safari":
		return SourceSafari, nil
	case "chromium", "chrome", "brave", "edge":
		return SourceChromium, nil
	case "firefox":
		return SourceFirefox, nil
	case "html", "netscape":
		return SourceBookmarksHTML, nil
	default:
		return 0, fmt.Errorf("unknown import source %q", v)
	}
}

// ImportedNode is one bookmark or folder of an external export.
type ImportedNode struct {
	Name          string         `json:"name" yaml:"name"`
	URL           string         `json:"url,omitempty" yaml:"url,omitempty"`
	IsFolder      bool           `json:"is_folder" yaml:"is_folder"`
	IsDDGFavorite bool           `json:"is_ddg_favorite,omitempty" yaml:"is_ddg_favorite,omitempty"`
	Children      []ImportedNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func countImported(nodes []ImportedNode) int {
	total := 0
	for _, n := range nodes {
		if n.IsFolder {
			total += countImported(n.Children)
		} else {
			total++
		}
	}
	return total
}

// ImportedBookmarks is a parsed export, split by its top-level folders. Only
// the children of the three containers are imported.
type ImportedBookmarks struct {
	BookmarkBar     ImportedNode  `json:"bookmark_bar"`
	OtherBookmarks  ImportedNode  `json:"other_bookmarks"`
	SyncedBookmarks *ImportedNode `json:"synced_bookmarks,omitempty"`
}

// NumberOfBookmarks counts the leaf bookmarks in the export.
func (ib *ImportedBookmarks) NumberOfBookmarks() int {
	if ib == nil {
		return 0
	}
	total := countImported(ib.BookmarkBar.Children) + countImported(ib.OtherBookmarks.Children)
	if ib.SyncedBookmarks != nil {
		total += countImported(ib.SyncedBookmarks.Children)
	}
	return total
}

// ImportResult tallies one import.
type ImportResult struct {
	Successful int `json:"successful"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Add accumulates other into r.
func (r *ImportResult) Add(other ImportResult) {
	r.Successful += other.Successful
	r.Duplicates += other.Duplicates
	r.Failed += other.Failed
}
