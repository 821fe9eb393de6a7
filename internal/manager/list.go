package manager

import (
	"net/url"
	"strings"

	"github.com/user/bookmarks/internal/db"
)

// List is an immutable snapshot of the store, indexed by URL. Lookups fall
// back to a case-insensitive match.
type List struct {
	TopLevel  []db.Node
	Favorites []db.Node

	urls      []string
	byURL     map[string][]db.Bookmark
	lowercase map[string]string
	byID      map[string]db.Node
}

func newList(bookmarks, topLevel, favorites []db.Node) *List {
	l := &List{
		TopLevel:  topLevel,
		Favorites: favorites,
		byURL:     make(map[string][]db.Bookmark),
		lowercase: make(map[string]string),
		byID:      make(map[string]db.Node),
	}
	for _, n := range bookmarks {
		b, ok := n.(db.Bookmark)
		if !ok {
			continue
		}
		if _, seen := l.byURL[b.URL]; !seen {
			l.urls = append(l.urls, b.URL)
		}
		l.byURL[b.URL] = append(l.byURL[b.URL], b)
		if _, seen := l.lowercase[strings.ToLower(b.URL)]; !seen {
			l.lowercase[strings.ToLower(b.URL)] = b.URL
		}
	}
	var index func(nodes []db.Node)
	index = func(nodes []db.Node) {
		for _, n := range nodes {
			l.byID[n.NodeID()] = n
			if f, ok := n.(db.Folder); ok {
				index(f.Children)
			}
		}
	}
	index(topLevel)
	return l
}

// Bookmark returns the first bookmark saved for rawURL.
func (l *List) Bookmark(rawURL string) (db.Bookmark, bool) {
	if l == nil {
		return db.Bookmark{}, false
	}
	bs, ok := l.byURL[rawURL]
	if !ok {
		key, found := l.lowercase[strings.ToLower(rawURL)]
		if !found {
			return db.Bookmark{}, false
		}
		bs = l.byURL[key]
	}
	if len(bs) == 0 {
		return db.Bookmark{}, false
	}
	return bs[0], true
}

// Node returns any bookmark or folder reachable from the top level.
func (l *List) Node(id string) (db.Node, bool) {
	if l == nil {
		return nil, false
	}
	n, ok := l.byID[id]
	return n, ok
}

// URLs returns each bookmarked URL once, in insertion order.
func (l *List) URLs() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.urls...)
}

// Hosts returns the distinct hosts of all bookmarked URLs.
func (l *List) Hosts() []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, raw := range l.URLs() {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, bs := range l.byURL {
		n += len(bs)
	}
	return n
}
