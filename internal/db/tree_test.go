package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReinsertOrdered(t *testing.T) {
	tests := []struct {
		name  string
		list  []string
		ids   []string
		index int
		want  []string
	}{
		{"block before own position", []string{"A", "B", "C", "D"}, []string{"D", "A"}, 1, []string{"D", "A", "B", "C"}},
		{"single forward", []string{"A", "B", "C", "D"}, []string{"A"}, 3, []string{"B", "C", "A", "D"}},
		{"single backward", []string{"A", "B", "C", "D"}, []string{"D"}, 0, []string{"D", "A", "B", "C"}},
		{"negative index clamps", []string{"A", "B", "C"}, []string{"C"}, -4, []string{"C", "A", "B"}},
		{"reverse order block", []string{"A", "B", "C", "D"}, []string{"C", "B"}, 0, []string{"C", "B", "A", "D"}},
		{"foreign ids", []string{"A", "B"}, []string{"X", "Y"}, 1, []string{"A", "X", "Y", "B"}},
		{"same place", []string{"A", "B", "C"}, []string{"B"}, 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var detached []string
			got := reinsertOrdered(append([]string(nil), tt.list...), tt.ids, tt.index, func(id string) {
				detached = append(detached, id)
			})
			assert.Equal(t, tt.want, got)
			for _, id := range detached {
				assert.NotContains(t, tt.list, id)
			}
		})
	}
}

func TestAppendOrdered(t *testing.T) {
	got := appendOrdered([]string{"A", "B", "C"}, []string{"A", "X"}, func(string) {})
	assert.Equal(t, []string{"B", "C", "A", "X"}, got)
}

func TestArenaCanMove(t *testing.T) {
	s := newTestStore(t)

	// f1 > f2 > f3, plus a sibling folder and a bookmark
	saveFolder(t, s, "f1", "F1", "")
	saveFolder(t, s, "f2", "F2", "f1")
	saveFolder(t, s, "f3", "F3", "f2")
	saveFolder(t, s, "other", "Other", "")
	saveBookmark(t, s, "b1", "B", "https://b.com", "f3", false)

	a, err := loadArena(s.db)
	require.NoError(t, err)

	tests := []struct {
		uuid, parent string
		want         bool
	}{
		{"f1", "f1", false},
		{"f1", "f2", false},
		{"f1", "f3", false},
		{"f2", "f3", false},
		{"f3", "f1", true},
		{"f1", "other", true},
		{"f1", "", true},
		{"b1", "f1", true},
		{"b1", "b1", false},
		{"f1", "b1", false},
		{"f1", "missing", false},
		{"missing", "f1", false},
		{RootFolderUUID, "f1", false},
		{"b1", FavoritesFolderUUID, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.canMove(tt.uuid, tt.parent), "%s -> %s", tt.uuid, tt.parent)
		assert.Equal(t, tt.want, s.CanMoveObject(context.Background(), tt.uuid, tt.parent), "%s -> %s", tt.uuid, tt.parent)
	}
}

func TestLoadAll_IncludesOrphans(t *testing.T) {
	s := newTestStore(t)
	saveBookmark(t, s, "b1", "A", "https://a.com", "", false)

	_, err := s.db.Exec(`INSERT INTO bookmark_entities (uuid, is_folder, title, url) VALUES ('orphan', 0, 'Orphan', 'https://o.com')`)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "Orphan"}, childTitles(t, s, ""))
}
