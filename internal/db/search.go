package db

import (
	"context"
	"sort"
	"strings"
)

// Search returns bookmarks whose title or URL contains every term of query,
// ranked by how many terms hit the title. An empty query lists bookmarks.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Bookmark, error) {
	var results []Bookmark
	err := s.perform(ctx, func() error {
		a, err := loadArena(s.db)
		if err != nil {
			return err
		}
		results = searchArena(a, query)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type scoredBookmark struct {
	bookmark Bookmark
	score    int
	seq      int64
}

func searchArena(a *arena, query string) []Bookmark {
	terms := strings.Fields(strings.ToLower(query))

	var scored []scoredBookmark
	for _, n := range a.bookmarks() {
		b := n.(Bookmark)
		title := strings.ToLower(b.Title)
		u := strings.ToLower(b.URL)

		score, matched := 0, true
		for _, term := range terms {
			inTitle := strings.Contains(title, term)
			if !inTitle && !strings.Contains(u, term) {
				matched = false
				break
			}
			if inTitle {
				score++
			}
		}
		if !matched {
			continue
		}
		if b.IsFavorite {
			score++
		}
		scored = append(scored, scoredBookmark{bookmark: b, score: score, seq: a.seq[b.ID]})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].seq < scored[j].seq
	})

	results := make([]Bookmark, 0, len(scored))
	for _, sb := range scored {
		results = append(results, sb.bookmark)
	}
	return results
}
