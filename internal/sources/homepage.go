package sources

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/user/bookmarks/internal/db"
)

// homepageEntry is one bookmark of a Homepage dashboard bookmarks.yaml.
type homepageEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// The file is a list of groups: - Group: [ - Name: [ {href, abbr, icon} ] ]
type homepageGroup map[string][]map[string][]homepageEntry

type homepageConfig []homepageGroup

var templateVariable = regexp.MustCompile(`\{\{\s*HOMEPAGE_[A-Z_]+\s*\}\}`)

// HomepageReader reads a Homepage dashboard bookmarks.yaml. Each group
// becomes a folder.
type HomepageReader struct {
	path string
}

func NewHomepageReader(path string) *HomepageReader {
	return &HomepageReader{path: path}
}

func (r *HomepageReader) Name() string { return "homepage" }

func (r *HomepageReader) Source() db.ImportSource { return db.SourceBookmarksHTML }

func (r *HomepageReader) Available() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

func (r *HomepageReader) Read(ctx context.Context) (*db.ImportedBookmarks, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	return parseHomepage(data)
}

func parseHomepage(data []byte) (*db.ImportedBookmarks, error) {
	data = templateVariable.ReplaceAll(data, nil)

	var config homepageConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}

	var groups []db.ImportedNode
	for _, group := range config {
		for _, name := range sortedKeys(group) {
			var children []db.ImportedNode
			for _, entries := range group[name] {
				for _, title := range sortedKeys(entries) {
					list := entries[title]
					if len(list) == 0 || list[0].Href == "" {
						continue
					}
					children = append(children, db.ImportedNode{Name: title, URL: list[0].Href})
				}
			}
			groups = append(groups, folder(name, children))
		}
	}

	return &db.ImportedBookmarks{
		BookmarkBar:    folder("", nil),
		OtherBookmarks: folder(otherBookmarksTitle, groups),
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
