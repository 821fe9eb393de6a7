package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/user/bookmarks/internal/logger"
)

// LoadAll fetches bookmarks, top-level entities or favorites.
func (s *Store) LoadAll(ctx context.Context, t FetchType) ([]Node, error) {
	var nodes []Node
	err := s.perform(ctx, func() error {
		a, err := loadArena(s.db)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAsyncFetchFailed, err)
		}
		switch t {
		case FetchBookmarks:
			nodes = a.bookmarks()
		case FetchTopLevelEntities:
			nodes = a.topLevel()
		case FetchFavorites:
			nodes = a.favoriteNodes()
		default:
			return fmt.Errorf("%w: unknown fetch type %d", ErrAsyncFetchFailed, t)
		}
		return nil
	})
	return nodes, err
}

// Get returns a single node, with its subtree for folders.
func (s *Store) Get(ctx context.Context, uuid string) (Node, error) {
	var n Node
	err := s.perform(ctx, func() error {
		a, err := loadArena(s.db)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAsyncFetchFailed, err)
		}
		e, ok := a.nodes[uuid]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingEntity, uuid)
		}
		n = a.toNode(e)
		return nil
	})
	return n, err
}

// BookmarkCount returns the number of leaf bookmarks.
func (s *Store) BookmarkCount(ctx context.Context) (int, error) {
	var n int
	err := s.perform(ctx, func() error {
		var err error
		n, err = countBookmarks(s.db)
		return err
	})
	return n, err
}

// Save inserts node under parentUUID. An empty or unknown parent falls back to
// the root. A nil or out of range index appends.
func (s *Store) Save(ctx context.Context, node Node, parentUUID string, index *int) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "save", func(tx *sql.Tx) error {
			return s.insertNode(tx, node, parentUUID, index)
		})
	})
}

func (s *Store) insertNode(tx *sql.Tx, node Node, parentUUID string, index *int) error {
	if node.NodeID() == "" {
		return ErrNoObjectID
	}

	parent, err := s.resolveParent(tx, parentUUID)
	if err != nil {
		return err
	}
	siblings, err := childIDs(tx, parent)
	if err != nil {
		return err
	}

	e := &entity{
		UUID:     node.NodeID(),
		Title:    sql.NullString{String: node.NodeTitle(), Valid: true},
		Parent:   sql.NullString{String: parent, Valid: true},
		Position: len(siblings),
	}
	var favorite bool
	switch n := node.(type) {
	case Bookmark:
		e.URL = sql.NullString{String: n.URL, Valid: true}
		e.DateAdded = n.DateAdded
		favorite = n.IsFavorite
	case Folder:
		e.IsFolder = true
		e.DateAdded = n.DateAdded
	}

	if err := insertEntity(tx, e); err != nil {
		return err
	}
	if index != nil && *index >= 0 && *index < len(siblings) {
		if err := writeChildren(tx, parent, slices.Insert(siblings, *index, e.UUID)); err != nil {
			return err
		}
	}
	if favorite {
		return addToFavorites(tx, e.UUID)
	}
	return nil
}

// resolveParent returns uuid when it names a live folder, else the root.
func (s *Store) resolveParent(q dbtx, uuid string) (string, error) {
	if uuid != "" && uuid != FavoritesFolderUUID {
		e, err := fetchEntity(q, uuid)
		if err == nil && e.IsFolder && !e.PendingDeletion {
			return e.UUID, nil
		}
		s.log.Warn("parent folder not found, using root", logger.String("parent", uuid))
	}
	if _, err := fetchEntity(q, RootFolderUUID); err != nil {
		s.log.Error("root folder missing", logger.Error(err))
		return "", ErrMissingParent
	}
	return RootFolderUUID, nil
}

// Update overwrites the title (and url for bookmarks) of an existing node and
// re-evaluates its favorites membership. The node's parent is not changed.
func (s *Store) Update(ctx context.Context, node Node) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "update", func(tx *sql.Tx) error {
			return s.updateNode(tx, node)
		})
	})
}

func (s *Store) updateNode(tx *sql.Tx, node Node) error {
	e, err := fetchEntity(tx, node.NodeID())
	if err != nil {
		s.assertionFailure("update of missing bookmark entity", logger.String("uuid", node.NodeID()))
		return err
	}
	if e.isSystemFolder() {
		return fmt.Errorf("%w: %s is not editable", ErrBadObjectID, e.UUID)
	}

	switch n := node.(type) {
	case Bookmark:
		if e.IsFolder {
			return fmt.Errorf("%w: %s is a folder", ErrBadObjectID, e.UUID)
		}
		if _, err := tx.Exec(`UPDATE bookmark_entities SET title = ?, url = ? WHERE uuid = ?`,
			n.Title, n.URL, n.ID); err != nil {
			return err
		}
		if n.IsFavorite {
			return addToFavorites(tx, n.ID)
		}
		return removeFromFavorites(tx, n.ID)
	case Folder:
		if !e.IsFolder {
			return fmt.Errorf("%w: %s is a bookmark", ErrBadObjectID, e.UUID)
		}
		_, err := tx.Exec(`UPDATE bookmark_entities SET title = ? WHERE uuid = ?`, n.Title, n.ID)
		return err
	}
	return nil
}

// UpdateObjects applies update to each node and writes the results back.
func (s *Store) UpdateObjects(ctx context.Context, uuids []string, update func(Node) Node) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "update", func(tx *sql.Tx) error {
			a, err := loadArena(tx)
			if err != nil {
				return err
			}
			for _, id := range uuids {
				e, ok := a.nodes[id]
				if !ok {
					s.assertionFailure("update of missing bookmark entity", logger.String("uuid", id))
					continue
				}
				updated := update(a.toNode(e))
				if updated == nil {
					continue
				}
				if updated.NodeID() != id {
					return fmt.Errorf("%w: update changed id %s to %s", ErrBadObjectID, id, updated.NodeID())
				}
				if err := s.updateNode(tx, updated); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// Add appends the given nodes to the children of parentUUID (root when empty).
func (s *Store) Add(ctx context.Context, uuids []string, parentUUID string) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "add", func(tx *sql.Tx) error {
			return s.moveEntities(tx, uuids, nil, parentUUID)
		})
	})
}

// Remove deletes the given nodes with their subtrees and favorites membership.
func (s *Store) Remove(ctx context.Context, uuids []string) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "remove", func(tx *sql.Tx) error {
			return s.markPendingDeletion(tx, uuids)
		})
	})
}

func (s *Store) markPendingDeletion(tx *sql.Tx, uuids []string) error {
	uuids = uniqueIDs(uuids)
	if len(uuids) == 0 {
		return nil
	}

	args := make([]any, len(uuids))
	for i, id := range uuids {
		args[i] = id
	}
	rows, err := tx.Query(`SELECT uuid FROM bookmark_entities WHERE uuid IN (`+placeholders(len(uuids))+`)`, args...)
	if err != nil {
		return err
	}
	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		found = append(found, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(found) != len(uuids) {
		s.assertionFailure("removing bookmarks: requested and fetched counts differ",
			logger.Int("requested", len(uuids)),
			logger.Int("fetched", len(found)))
	}

	for _, id := range found {
		if id == RootFolderUUID || id == FavoritesFolderUUID {
			s.assertionFailure("refusing to remove system folder", logger.String("uuid", id))
			continue
		}
		if _, err := tx.Exec(`UPDATE bookmark_entities SET pending_deletion = 1 WHERE uuid = ?`, id); err != nil {
			return err
		}
	}
	return nil
}

// CanMoveObject reports whether uuid may be moved into parentUUID (root when
// empty). It is false when that would put a folder inside itself, and also
// when either node can't be found.
func (s *Store) CanMoveObject(ctx context.Context, uuid, parentUUID string) bool {
	var ok bool
	err := s.perform(ctx, func() error {
		a, err := loadArena(s.db)
		if err != nil {
			return err
		}
		ok = a.canMove(uuid, parentUUID)
		return nil
	})
	if err != nil {
		s.log.Warn("move check failed", logger.String("uuid", uuid), logger.Error(err))
		return false
	}
	return ok
}

// Move relocates nodes into parentUUID (root when empty). With an index inside
// the parent's bounds the nodes are inserted as a block in the given order,
// otherwise they are appended.
func (s *Store) Move(ctx context.Context, uuids []string, index *int, parentUUID string) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "move", func(tx *sql.Tx) error {
			return s.moveEntities(tx, uuids, index, parentUUID)
		})
	})
}

func (s *Store) moveEntities(tx *sql.Tx, uuids []string, index *int, parentUUID string) error {
	a, err := loadArena(tx)
	if err != nil {
		return err
	}

	target := parentUUID
	if target == "" {
		target = RootFolderUUID
	}
	if dst, ok := a.nodes[target]; !ok || !dst.IsFolder || target == FavoritesFolderUUID {
		return fmt.Errorf("%w: %s", ErrMissingParent, parentUUID)
	}

	ids := s.resolveOrdered(a, uuids)
	for _, id := range ids {
		if !a.canMove(id, target) {
			return fmt.Errorf("%w: %s into %s", ErrInvalidMove, id, target)
		}
	}

	lists := make(map[string][]string)
	list := func(parent string) []string {
		if l, ok := lists[parent]; ok {
			return l
		}
		return slices.Clone(a.children[parent])
	}
	detach := func(id string) {
		if p := a.nodes[id].parentUUID(); p != target {
			lists[p] = slices.DeleteFunc(list(p), func(c string) bool { return c == id })
		}
	}

	children := list(target)
	if index != nil && *index < len(children) {
		children = reinsertOrdered(children, ids, *index, detach)
	} else {
		children = appendOrdered(children, ids, detach)
	}
	lists[target] = children

	for parent, ids := range lists {
		if parent == "" {
			continue
		}
		if err := writeChildren(tx, parent, ids); err != nil {
			return err
		}
	}
	return nil
}

// MoveFavorites reorders favorites with the same block insertion as Move.
// Bookmarks that aren't favorites yet become favorites.
func (s *Store) MoveFavorites(ctx context.Context, uuids []string, index *int) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "move-favorites", func(tx *sql.Tx) error {
			a, err := loadArena(tx)
			if err != nil {
				return err
			}
			if _, ok := a.nodes[FavoritesFolderUUID]; !ok {
				return ErrMissingFavoritesRoot
			}

			var ids []string
			for _, id := range s.resolveOrdered(a, uuids) {
				if a.nodes[id].IsFolder {
					s.assertionFailure("folders can't be favorites", logger.String("uuid", id))
					continue
				}
				ids = append(ids, id)
			}

			favorites := slices.Clone(a.favorites)
			noop := func(string) {}
			if index != nil && *index < len(favorites) {
				favorites = reinsertOrdered(favorites, ids, *index, noop)
			} else {
				favorites = appendOrdered(favorites, ids, noop)
			}
			return writeFavorites(tx, favorites)
		})
	})
}

// resolveOrdered keeps the uuids that exist, in the caller's order.
func (s *Store) resolveOrdered(a *arena, uuids []string) []string {
	var ids []string
	for _, id := range uniqueIDs(uuids) {
		if _, ok := a.nodes[id]; !ok {
			s.assertionFailure("bookmark entity not found", logger.String("uuid", id))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ResetBookmarks deletes every node and recreates the root and favorites folders.
func (s *Store) ResetBookmarks(ctx context.Context) error {
	return s.perform(ctx, func() error {
		return s.applyChangesAndSave(ctx, "reset", func(tx *sql.Tx) error {
			if _, err := tx.Exec(`DELETE FROM favorites`); err != nil {
				return err
			}
			if _, err := tx.Exec(`DELETE FROM bookmark_entities`); err != nil {
				return err
			}
			return prepareFolderStructure(tx)
		})
	})
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
