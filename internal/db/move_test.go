package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedABCD(t *testing.T, s *Store, parent string) {
	t.Helper()
	for _, id := range []string{"A", "B", "C", "D"} {
		saveBookmark(t, s, id, id, "https://"+id+".com", parent, false)
	}
}

func TestMove_OrderPreservation(t *testing.T) {
	s := newTestStore(t)
	seedABCD(t, s, "")

	require.NoError(t, s.Move(context.Background(), []string{"D", "A"}, intPtr(1), ""))

	assert.Equal(t, []string{"D", "A", "B", "C"}, childTitles(t, s, ""))
}

func TestMove_WithinParent(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		index *int
		want  []string
	}{
		{"to front", []string{"C"}, intPtr(0), []string{"C", "A", "B", "D"}},
		{"forward", []string{"A"}, intPtr(2), []string{"B", "A", "C", "D"}},
		{"out of bounds appends", []string{"B", "A"}, intPtr(10), []string{"C", "D", "B", "A"}},
		{"nil index appends", []string{"A"}, nil, []string{"B", "C", "D", "A"}},
		{"unknown ids skipped", []string{"missing", "D"}, intPtr(0), []string{"D", "A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			saveFolder(t, s, "f", "F", "")
			seedABCD(t, s, "f")

			require.NoError(t, s.Move(context.Background(), tt.ids, tt.index, "f"))
			assert.Equal(t, tt.want, childTitles(t, s, "f"))
		})
	}
}

func TestMove_AcrossFolders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveFolder(t, s, "src", "Source", "")
	saveFolder(t, s, "dst", "Dest", "")
	saveBookmark(t, s, "a", "a", "https://a.com", "src", false)
	saveBookmark(t, s, "b", "b", "https://b.com", "src", false)
	saveBookmark(t, s, "x", "x", "https://x.com", "dst", false)
	saveBookmark(t, s, "y", "y", "https://y.com", "dst", false)

	require.NoError(t, s.Move(ctx, []string{"b", "a"}, intPtr(1), "dst"))

	assert.Equal(t, []string{"x", "b", "a", "y"}, childTitles(t, s, "dst"))
	assert.Empty(t, childTitles(t, s, "src"))

	n, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "dst", n.ParentUUID())

	// to root
	require.NoError(t, s.Move(ctx, []string{"x"}, nil, ""))
	assert.Equal(t, []string{"Source", "Dest", "x"}, childTitles(t, s, ""))
}

func TestMove_RejectsCycles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveFolder(t, s, "f1", "F1", "")
	saveFolder(t, s, "f2", "F2", "f1")

	err := s.Move(ctx, []string{"f1"}, nil, "f2")
	assert.ErrorIs(t, err, ErrInvalidMove)

	err = s.Move(ctx, []string{"f1"}, nil, "f1")
	assert.ErrorIs(t, err, ErrInvalidMove)

	// nothing changed
	n, err := s.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, RootFolderUUID, n.ParentUUID())
}

func TestMove_MissingParent(t *testing.T) {
	s := newTestStore(t)
	saveBookmark(t, s, "a", "a", "https://a.com", "", false)

	err := s.Move(context.Background(), []string{"a"}, nil, "missing")
	assert.ErrorIs(t, err, ErrMissingParent)

	err = s.Move(context.Background(), []string{"a"}, nil, "a")
	assert.ErrorIs(t, err, ErrMissingParent)
}

func TestAdd_AppendsToFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveFolder(t, s, "f", "F", "")
	saveBookmark(t, s, "x", "x", "https://x.com", "f", false)
	saveBookmark(t, s, "a", "a", "https://a.com", "", false)
	saveBookmark(t, s, "b", "b", "https://b.com", "", false)

	require.NoError(t, s.Add(ctx, []string{"b", "a"}, "f"))

	assert.Equal(t, []string{"x", "b", "a"}, childTitles(t, s, "f"))
	assert.Equal(t, []string{"F"}, childTitles(t, s, ""))
}

func TestMoveFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C", "D"} {
		saveBookmark(t, s, id, id, "https://"+id+".com", "", true)
	}
	saveBookmark(t, s, "E", "E", "https://e.com", "", false)
	saveFolder(t, s, "F", "F", "")

	require.NoError(t, s.MoveFavorites(ctx, []string{"D", "A"}, intPtr(1)))
	assert.Equal(t, []string{"D", "A", "B", "C"}, favoriteTitles(t, s))

	// a non-favorite joins the list, a folder is ignored
	require.NoError(t, s.MoveFavorites(ctx, []string{"E", "F"}, intPtr(0)))
	assert.Equal(t, []string{"E", "D", "A", "B", "C"}, favoriteTitles(t, s))

	require.NoError(t, s.MoveFavorites(ctx, []string{"E"}, nil))
	assert.Equal(t, []string{"D", "A", "B", "C", "E"}, favoriteTitles(t, s))

	// regular order is untouched
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, childTitles(t, s, ""))
}
