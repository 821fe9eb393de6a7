package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/bookmarks/internal/logger"
)

const (
	importedFromFolderPrefix     = "Imported from"
	importedFavoritesFolderTitle = "Imported Favorites"
	otherBookmarksFolderTitle    = "Other Bookmarks"
)

// ImportBookmarks merges an external export into the tree in one transaction.
//
// When the root already has content, everything goes into a new
// "Imported from <source>" folder and nothing becomes a favorite. When the
// root is empty the export is laid out the way the source browser shows it,
// with bookmarks bar items becoming favorites. Bookmarks whose URL is already
// stored count as duplicates and are skipped. Folders left without bookmarks
// are removed.
//
// Successful is the change in the store's bookmark count. On error nothing is
// persisted and every bookmark of the export is reported as failed.
func (s *Store) ImportBookmarks(ctx context.Context, imported *ImportedBookmarks, source ImportSource) (ImportResult, error) {
	if imported == nil {
		imported = &ImportedBookmarks{}
	}

	var result ImportResult
	err := s.perform(ctx, func() error {
		before, err := countBookmarks(s.db)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAsyncFetchFailed, err)
		}

		err = s.applyChangesAndSave(ctx, "import", func(tx *sql.Tx) error {
			m, err := newImportMerge(tx, source)
			if err != nil {
				return err
			}
			if err := m.run(imported); err != nil {
				return err
			}
			result = m.result
			return nil
		})
		if err != nil {
			return err
		}

		after, err := countBookmarks(s.db)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAsyncFetchFailed, err)
		}
		result.Successful = after - before
		return nil
	})
	if err != nil {
		s.log.Error("failed to import bookmarks",
			logger.String("source", source.String()),
			logger.Error(err))
		return ImportResult{Failed: imported.NumberOfBookmarks()}, err
	}

	s.log.Info("imported bookmarks",
		logger.String("source", source.String()),
		logger.Int("successful", result.Successful),
		logger.Int("duplicates", result.Duplicates),
		logger.Int("failed", result.Failed))
	return result, nil
}

// importMerge holds the state of one import transaction.
type importMerge struct {
	tx     *sql.Tx
	source ImportSource
	urls   map[string]bool
	result ImportResult
	now    time.Time
}

func newImportMerge(tx *sql.Tx, source ImportSource) (*importMerge, error) {
	m := &importMerge{
		tx:     tx,
		source: source,
		urls:   make(map[string]bool),
		now:    time.Now(),
	}

	rows, err := tx.Query(`SELECT url FROM bookmark_entities
		WHERE is_folder = 0 AND pending_deletion = 0 AND url IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		m.urls[u] = true
	}
	return m, rows.Err()
}

func (m *importMerge) run(ib *ImportedBookmarks) error {
	if _, err := fetchEntity(m.tx, RootFolderUUID); err != nil {
		return ErrMissingRoot
	}
	rootChildren, err := childIDs(m.tx, RootFolderUUID)
	if err != nil {
		return err
	}

	var synced []ImportedNode
	if ib.SyncedBookmarks != nil {
		folder := *ib.SyncedBookmarks
		folder.IsFolder = true
		synced = []ImportedNode{folder}
	}

	if len(rootChildren) > 0 {
		parent, err := m.createFolder(fmt.Sprintf("%s %s", importedFromFolderPrefix, m.source.Name()), RootFolderUUID)
		if err != nil {
			return err
		}
		for _, nodes := range [][]ImportedNode{ib.BookmarkBar.Children, ib.OtherBookmarks.Children, synced} {
			if err := m.create(nodes, parent, false, false); err != nil {
				return err
			}
		}
		return m.pruneIfEmpty(parent)
	}

	switch m.source {
	case SourceDuckDuckGoWebKit:
		if err := m.create(ib.BookmarkBar.Children, RootFolderUUID, false, true); err != nil {
			return err
		}
		if err := m.create(ib.OtherBookmarks.Children, RootFolderUUID, false, true); err != nil {
			return err
		}
	case SourceSafari:
		if err := m.createInFolder(importedFavoritesFolderTitle, ib.BookmarkBar.Children, true); err != nil {
			return err
		}
		if err := m.create(ib.OtherBookmarks.Children, RootFolderUUID, false, true); err != nil {
			return err
		}
	default:
		if err := m.create(ib.BookmarkBar.Children, RootFolderUUID, true, true); err != nil {
			return err
		}
		if err := m.createInFolder(otherBookmarksFolderTitle, ib.OtherBookmarks.Children, false); err != nil {
			return err
		}
	}
	return m.create(synced, RootFolderUUID, false, true)
}

// createInFolder imports nodes into a root-level folder with the given title,
// reusing an existing one.
func (m *importMerge) createInFolder(title string, nodes []ImportedNode, markFavorite bool) error {
	if len(nodes) == 0 {
		return nil
	}
	folder, created, err := m.findOrCreateFolder(title, RootFolderUUID)
	if err != nil {
		return err
	}
	if err := m.create(nodes, folder, markFavorite, true); err != nil {
		return err
	}
	if created {
		return m.pruneIfEmpty(folder)
	}
	return nil
}

// create imports nodes under parent. markFavorite applies to the direct
// bookmark children only. With allowFavorites false nothing becomes a favorite.
func (m *importMerge) create(nodes []ImportedNode, parent string, markFavorite, allowFavorites bool) error {
	for _, n := range nodes {
		if n.IsFolder {
			id, err := m.createFolder(n.Name, parent)
			if err != nil {
				return err
			}
			if err := m.create(n.Children, id, false, allowFavorites); err != nil {
				return err
			}
			if err := m.pruneIfEmpty(id); err != nil {
				return err
			}
			continue
		}

		u, ok := resolveURL(n.URL)
		if !ok {
			m.result.Failed++
			continue
		}
		if m.urls[u] {
			m.result.Duplicates++
			continue
		}

		id := uuid.NewString()
		pos, err := nextPosition(m.tx, parent)
		if err != nil {
			return err
		}
		err = insertEntity(m.tx, &entity{
			UUID:      id,
			Title:     sql.NullString{String: n.Name, Valid: true},
			URL:       sql.NullString{String: u, Valid: true},
			Parent:    sql.NullString{String: parent, Valid: true},
			Position:  pos,
			DateAdded: m.now,
		})
		if err != nil {
			return err
		}
		m.urls[u] = true
		m.result.Successful++

		if allowFavorites && (markFavorite || n.IsDDGFavorite) {
			if err := addToFavorites(m.tx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *importMerge) createFolder(title, parent string) (string, error) {
	id := uuid.NewString()
	pos, err := nextPosition(m.tx, parent)
	if err != nil {
		return "", err
	}
	err = insertEntity(m.tx, &entity{
		UUID:      id,
		IsFolder:  true,
		Title:     sql.NullString{String: title, Valid: true},
		Parent:    sql.NullString{String: parent, Valid: true},
		Position:  pos,
		DateAdded: m.now,
	})
	return id, err
}

func (m *importMerge) findOrCreateFolder(title, parent string) (string, bool, error) {
	var id string
	err := m.tx.QueryRow(`SELECT uuid FROM bookmark_entities
		WHERE parent_uuid = ? AND is_folder = 1 AND title = ? AND pending_deletion = 0
		ORDER BY position LIMIT 1`, parent, title).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, err
	}
	id, err = m.createFolder(title, parent)
	return id, true, err
}

// pruneIfEmpty deletes folder when it holds no bookmark and no populated
// sub-folder.
func (m *importMerge) pruneIfEmpty(folder string) error {
	var hasBookmark, hasPopulatedFolder bool
	err := m.tx.QueryRow(`
		SELECT
			EXISTS (SELECT 1 FROM bookmark_entities WHERE parent_uuid = ? AND is_folder = 0),
			EXISTS (SELECT 1 FROM bookmark_entities c WHERE c.parent_uuid = ? AND c.is_folder = 1
				AND EXISTS (SELECT 1 FROM bookmark_entities g WHERE g.parent_uuid = c.uuid))
	`, folder, folder).Scan(&hasBookmark, &hasPopulatedFolder)
	if err != nil {
		return err
	}
	if hasBookmark || hasPopulatedFolder {
		return nil
	}
	_, err = m.tx.Exec(`DELETE FROM bookmark_entities WHERE uuid = ?`, folder)
	return err
}

// resolveURL returns the trimmed URL when it is absolute.
func resolveURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return "", false
	}
	return raw, true
}
