package db

import (
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

const entityColumns = `uuid, is_folder, title, url, parent_uuid, position, date_added, pending_deletion, rowid`

// arena is the whole live graph, keyed by uuid. Parents are keys, never pointers.
type arena struct {
	nodes     map[string]*entity
	seq       map[string]int64
	children  map[string][]string
	favorites []string
	favorite  map[string]bool
}

func scanEntity(row interface{ Scan(...any) error }) (*entity, int64, error) {
	var e entity
	var rowid int64
	err := row.Scan(&e.UUID, &e.IsFolder, &e.Title, &e.URL, &e.Parent, &e.Position,
		&e.DateAdded, &e.PendingDeletion, &rowid)
	if err != nil {
		return nil, 0, err
	}
	return &e, rowid, nil
}

// loadArena reads every node that is not pending deletion.
func loadArena(q dbtx) (*arena, error) {
	rows, err := q.Query(`SELECT ` + entityColumns + ` FROM bookmark_entities
		WHERE pending_deletion = 0 ORDER BY position, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	a := &arena{
		nodes:    make(map[string]*entity),
		seq:      make(map[string]int64),
		children: make(map[string][]string),
		favorite: make(map[string]bool),
	}
	for rows.Next() {
		e, rowid, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		a.nodes[e.UUID] = e
		a.seq[e.UUID] = rowid
		if !e.isSystemFolder() {
			p := e.parentUUID()
			a.children[p] = append(a.children[p], e.UUID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	a.favorites, err = favoriteIDs(q)
	if err != nil {
		return nil, err
	}
	for _, id := range a.favorites {
		a.favorite[id] = true
	}
	return a, nil
}

// canMove reports whether node uuid may be placed under parent. A folder can't
// go into itself or any of its descendants. Unknown nodes can't move.
func (a *arena) canMove(uuid, parent string) bool {
	if parent == "" {
		parent = RootFolderUUID
	}
	if uuid == parent {
		return false
	}
	src, ok := a.nodes[uuid]
	if !ok || src.isSystemFolder() {
		return false
	}
	dst, ok := a.nodes[parent]
	if !ok || !dst.IsFolder || dst.UUID == FavoritesFolderUUID {
		return false
	}
	if !src.IsFolder {
		return true
	}

	// Walk up from the destination. The bound guards against corrupt data.
	cur := dst
	for i := 0; cur != nil && i <= len(a.nodes); i++ {
		if cur.UUID == uuid {
			return false
		}
		cur = a.nodes[cur.parentUUID()]
	}
	return true
}

// toNode projects e and, for folders, its whole subtree.
func (a *arena) toNode(e *entity) Node {
	if e.IsFolder {
		f := Folder{
			ID:               e.UUID,
			Title:            e.Title.String,
			ParentFolderUUID: e.parentUUID(),
			DateAdded:        e.DateAdded,
		}
		for _, id := range a.children[e.UUID] {
			f.Children = append(f.Children, a.toNode(a.nodes[id]))
		}
		return f
	}
	return Bookmark{
		ID:               e.UUID,
		Title:            e.Title.String,
		URL:              e.URL.String,
		IsFavorite:       a.favorite[e.UUID],
		ParentFolderUUID: e.parentUUID(),
		DateAdded:        e.DateAdded,
	}
}

// bookmarks returns every leaf bookmark in insertion order.
func (a *arena) bookmarks() []Node {
	var ids []string
	for id, e := range a.nodes {
		if !e.IsFolder {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return a.seq[ids[i]] < a.seq[ids[j]] })

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, a.toNode(a.nodes[id]))
	}
	return nodes
}

// topLevel returns the root's children followed by orphaned nodes.
func (a *arena) topLevel() []Node {
	ids := append(slices.Clone(a.children[RootFolderUUID]), a.children[""]...)
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, a.toNode(a.nodes[id]))
	}
	return nodes
}

func (a *arena) favoriteNodes() []Node {
	nodes := make([]Node, 0, len(a.favorites))
	for _, id := range a.favorites {
		if e, ok := a.nodes[id]; ok {
			nodes = append(nodes, a.toNode(e))
		}
	}
	return nodes
}

func fetchEntity(q dbtx, uuid string) (*entity, error) {
	e, _, err := scanEntity(q.QueryRow(`SELECT `+entityColumns+` FROM bookmark_entities WHERE uuid = ?`, uuid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntity, uuid)
	}
	return e, err
}

func insertEntity(q dbtx, e *entity) error {
	if e.DateAdded.IsZero() {
		e.DateAdded = time.Now()
	}
	_, err := q.Exec(`
		INSERT INTO bookmark_entities (uuid, is_folder, title, url, parent_uuid, position, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.UUID, e.IsFolder, e.Title, e.URL, e.Parent, e.Position, e.DateAdded)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}
	return nil
}

// childIDs returns the live children of parent in display order.
func childIDs(q dbtx, parent string) ([]string, error) {
	rows, err := q.Query(`SELECT uuid FROM bookmark_entities
		WHERE parent_uuid = ? AND pending_deletion = 0 ORDER BY position, rowid`, parent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writeChildren makes ids the ordered children of parent.
func writeChildren(q dbtx, parent string, ids []string) error {
	for i, id := range ids {
		if _, err := q.Exec(`UPDATE bookmark_entities SET parent_uuid = ?, position = ? WHERE uuid = ?`,
			parent, i, id); err != nil {
			return err
		}
	}
	return nil
}

func favoriteIDs(q dbtx) ([]string, error) {
	rows, err := q.Query(`SELECT bookmark_uuid FROM favorites WHERE folder_uuid = ? ORDER BY position`,
		FavoritesFolderUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writeFavorites replaces the favorites list with ids, in order.
func writeFavorites(q dbtx, ids []string) error {
	if _, err := q.Exec(`DELETE FROM favorites WHERE folder_uuid = ?`, FavoritesFolderUUID); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := q.Exec(`INSERT INTO favorites (folder_uuid, bookmark_uuid, position) VALUES (?, ?, ?)`,
			FavoritesFolderUUID, id, i); err != nil {
			return err
		}
	}
	return nil
}

func addToFavorites(q dbtx, id string) error {
	if _, err := fetchEntity(q, FavoritesFolderUUID); err != nil {
		return ErrMissingFavoritesRoot
	}
	_, err := q.Exec(`
		INSERT OR IGNORE INTO favorites (folder_uuid, bookmark_uuid, position)
		SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM favorites WHERE folder_uuid = ?
	`, FavoritesFolderUUID, id, FavoritesFolderUUID)
	return err
}

func removeFromFavorites(q dbtx, id string) error {
	_, err := q.Exec(`DELETE FROM favorites WHERE folder_uuid = ? AND bookmark_uuid = ?`, FavoritesFolderUUID, id)
	return err
}

func nextPosition(q dbtx, parent string) (int, error) {
	var pos int
	err := q.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM bookmark_entities WHERE parent_uuid = ?`,
		parent).Scan(&pos)
	return pos, err
}

func countBookmarks(q dbtx) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM bookmark_entities WHERE is_folder = 0 AND pending_deletion = 0`).Scan(&n)
	return n, err
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// reinsertOrdered moves ids into list as a block starting at index, in the
// given order. An id already in list is removed first, and when it sat before
// the insertion point the point shifts left by one. Ids not in list are
// detached from wherever they live.
func reinsertOrdered(list, ids []string, index int, detach func(id string)) []string {
	cur := max(index, 0)
	for _, id := range ids {
		adj := cur
		if pos := slices.Index(list, id); pos >= 0 {
			if cur > pos {
				adj--
			}
			list = slices.Delete(list, pos, pos+1)
		} else {
			detach(id)
		}
		if adj < len(list) {
			list = slices.Insert(list, adj, id)
		} else {
			list = append(list, id)
		}
		cur = adj + 1
	}
	return list
}

// appendOrdered moves ids to the end of list in the given order.
func appendOrdered(list, ids []string, detach func(id string)) []string {
	for _, id := range ids {
		if pos := slices.Index(list, id); pos >= 0 {
			list = slices.Delete(list, pos, pos+1)
		} else {
			detach(id)
		}
		list = append(list, id)
	}
	return list
}
