package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/bookmarks/internal/db"
)

const (
	// DDGNamespace marks documents written by DuckDuckGo.
	DDGNamespace         = "https://duckduckgo.com/bookmarks"
	ddgNamespaceAttr     = "xmlns:duckduckgo"
	ddgFavoriteAttr      = "duckduckgo:favorite"
	toolbarFolderAttr    = "personal_toolbar_folder"
	otherBookmarksTitle  = "Other Bookmarks"
	safariFavoritesTitle = "Favorites"
)

// HTMLReader reads Netscape bookmark files as exported by every major browser.
type HTMLReader struct {
	path   string
	source db.ImportSource
}

func NewHTMLReader(path string) *HTMLReader {
	return &HTMLReader{path: path, source: db.SourceBookmarksHTML}
}

func (r *HTMLReader) Name() string { return "html" }

func (r *HTMLReader) Source() db.ImportSource { return r.source }

func (r *HTMLReader) Available() bool {
	info, err := os.Stat(r.path)
	return err == nil && !info.IsDir()
}

func (r *HTMLReader) Read(ctx context.Context) (*db.ImportedBookmarks, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bookmarks file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks html: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imported, source, err := parseBookmarksDocument(doc)
	if err != nil {
		return nil, err
	}
	r.source = source
	return imported, nil
}

// parseBookmarksDocument splits the top-level list into the bookmarks bar and
// everything else. DuckDuckGo documents have no bar.
func parseBookmarksDocument(doc *goquery.Document) (*db.ImportedBookmarks, db.ImportSource, error) {
	top := doc.Find("dl").First()
	if top.Length() == 0 {
		return nil, 0, fmt.Errorf("not a bookmarks file: no top-level list")
	}

	source := db.SourceBookmarksHTML
	if ns, ok := doc.Find("html").Attr(ddgNamespaceAttr); ok && ns == DDGNamespace {
		source = db.SourceDuckDuckGoWebKit
	}

	items := readList(top)

	bar := folder("", nil)
	var other []db.ImportedNode
	if source == db.SourceDuckDuckGoWebKit {
		other = items
	} else {
		barIndex := toolbarIndex(top, items)
		for i, item := range items {
			if i == barIndex {
				bar = item
				continue
			}
			other = append(other, item)
		}
		if barIndex >= 0 && !hasToolbarAttr(top) && bar.Name == safariFavoritesTitle {
			source = db.SourceSafari
		}
	}

	return &db.ImportedBookmarks{
		BookmarkBar:    bar,
		OtherBookmarks: folder(otherBookmarksTitle, other),
	}, source, nil
}

// toolbarIndex finds the bar: the folder flagged as the personal toolbar, or
// else the first top-level folder.
func toolbarIndex(top *goquery.Selection, items []db.ImportedNode) int {
	index := -1
	top.ChildrenFiltered("dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		if _, ok := dt.ChildrenFiltered("h3").Attr(toolbarFolderAttr); ok {
			index = i
			return false
		}
		return true
	})
	if index >= 0 {
		return index
	}
	for i, item := range items {
		if item.IsFolder {
			return i
		}
	}
	return -1
}

func hasToolbarAttr(top *goquery.Selection) bool {
	return top.Find("h3[" + toolbarFolderAttr + "]").Length() > 0
}

// readList converts the DT entries of one DL element.
func readList(dl *goquery.Selection) []db.ImportedNode {
	var nodes []db.ImportedNode
	dl.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
		if h3 := dt.ChildrenFiltered("h3").First(); h3.Length() > 0 {
			nodes = append(nodes, folder(strings.TrimSpace(h3.Text()), readList(dt.ChildrenFiltered("dl").First())))
			return
		}
		a := dt.ChildrenFiltered("a").First()
		if a.Length() == 0 {
			return
		}
		href, _ := a.Attr("href")
		nodes = append(nodes, db.ImportedNode{
			Name:          strings.TrimSpace(a.Text()),
			URL:           strings.TrimSpace(href),
			IsDDGFavorite: a.AttrOr(ddgFavoriteAttr, "") == "true",
		})
	})
	return nodes
}
