package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/notify"
)

// DatabaseFileName is the name of the store file inside the data directory.
const DatabaseFileName = "Bookmarks.sqlite"

const defaultMaxSaveAttempts = 4

// Options are the injected collaborators of a Store.
type Options struct {
	Logger   logger.Logger
	Notifier notify.Notifier
	// DebugAssertions turns assertion failures into panics. Leave it off in
	// production and in tests.
	DebugAssertions bool
	// MaxSaveAttempts bounds the retries on busy or locked databases.
	MaxSaveAttempts int
}

// Store owns the persisted bookmark graph. A single worker goroutine runs
// every operation, so no two operations ever overlap.
type Store struct {
	db              *sql.DB
	log             logger.Logger
	notifier        notify.Notifier
	debugAssertions bool
	maxSaveAttempts int

	jobs      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	// beforeCommit runs inside every transaction right before it commits.
	beforeCommit func(tx *sql.Tx) error
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NewStore opens (or creates) the bookmarks database in dataDir, repairs it
// and starts the worker.
func NewStore(dataDir string, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.MaxSaveAttempts < 1 {
		opts.MaxSaveAttempts = defaultMaxSaveAttempts
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One connection keeps transactions and foreign key pragmas on the same handle.
	conn.SetMaxOpenConns(1)

	s := &Store{
		db:              conn,
		log:             opts.Logger,
		notifier:        opts.Notifier,
		debugAssertions: opts.DebugAssertions,
		maxSaveAttempts: opts.MaxSaveAttempts,
		jobs:            make(chan func()),
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
	}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := prepareFolderStructure(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := fetchEntity(conn, RootFolderUUID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrMissingRoot, err)
	}
	s.removeInvalidEntities()

	go s.run()
	return s, nil
}

// Close stops the worker and closes the database. Operations submitted
// afterwards fail with ErrStoreDeallocated.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.quit:
			return
		}
	}
}

// perform runs fn on the worker and waits for it. ctx only bounds the wait:
// once accepted, fn always runs to completion.
func (s *Store) perform(ctx context.Context, fn func() error) error {
	select {
	case <-s.quit:
		return ErrStoreDeallocated
	default:
	}

	result := make(chan error, 1)
	job := func() { result <- fn() }

	select {
	case s.jobs <- job:
	case <-s.quit:
		return ErrStoreDeallocated
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookmark_entities (
		uuid TEXT PRIMARY KEY,
		is_folder INTEGER NOT NULL DEFAULT 0,
		title TEXT,
		url TEXT,
		parent_uuid TEXT REFERENCES bookmark_entities(uuid) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		pending_deletion INTEGER NOT NULL DEFAULT 0,
		CHECK (parent_uuid IS NULL OR parent_uuid != uuid)
	);

	CREATE INDEX IF NOT EXISTS idx_entities_parent ON bookmark_entities(parent_uuid, position);
	CREATE INDEX IF NOT EXISTS idx_entities_url ON bookmark_entities(url);

	CREATE TABLE IF NOT EXISTS favorites (
		folder_uuid TEXT NOT NULL REFERENCES bookmark_entities(uuid) ON DELETE CASCADE,
		bookmark_uuid TEXT NOT NULL REFERENCES bookmark_entities(uuid) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (folder_uuid, bookmark_uuid)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareFolderStructure creates the root and favorites folders when missing.
func prepareFolderStructure(q dbtx) error {
	now := time.Now()
	for _, f := range []struct{ uuid, title string }{
		{RootFolderUUID, rootFolderTitle},
		{FavoritesFolderUUID, favoritesFolderTitle},
	} {
		_, err := q.Exec(`
			INSERT OR IGNORE INTO bookmark_entities (uuid, is_folder, title, position, date_added)
			VALUES (?, 1, ?, 0, ?)
		`, f.uuid, f.title, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// removeInvalidEntities deletes rows left without a title. They can't be
// created through the store, so this is a silent repair.
func (s *Store) removeInvalidEntities() {
	err := s.applyChangesAndSave(context.Background(), "repair", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM bookmark_entities WHERE title IS NULL AND pending_deletion = 0`)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.log.Warn("removed invalid bookmark entities", logger.Int("count", int(n)))
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to remove invalid bookmark entities", logger.Error(err))
	}
}

// applyChangesAndSave runs changes in a transaction, hard-deletes anything
// marked pending deletion and commits. Busy or locked databases are retried.
func (s *Store) applyChangesAndSave(ctx context.Context, op string, changes func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxSaveAttempts; attempt++ {
		err := s.saveOnce(changes)
		if err == nil {
			s.notify(ctx, op)
			return nil
		}
		if !isTransient(err) {
			if !isCallerError(err) {
				s.assertionFailure("saving bookmarks failed", logger.String("op", op), logger.Error(err))
			}
			return err
		}
		lastErr = err
		s.log.Warn("bookmark save conflict, retrying",
			logger.String("op", op),
			logger.Int("attempt", attempt),
			logger.Error(err))
	}

	err := &SaveLoopError{Attempts: s.maxSaveAttempts, Err: lastErr}
	s.assertionFailure("bookmark save loop exhausted", logger.String("op", op), logger.Error(err))
	return err
}

func (s *Store) saveOnce(changes func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := changes(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM bookmark_entities WHERE pending_deletion = 1`); err != nil {
		_ = tx.Rollback()
		return err
	}
	if s.beforeCommit != nil {
		if err := s.beforeCommit(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) notify(ctx context.Context, op string) {
	if op == "repair" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.notifier.Notify(ctx, notify.Change{Op: op, At: time.Now().UTC()}); err != nil {
		s.log.Warn("failed to publish bookmark change", logger.String("op", op), logger.Error(err))
	}
}

// assertionFailure reports a broken contract. It always logs and panics only
// when debug assertions are on.
func (s *Store) assertionFailure(msg string, fields ...logger.Field) {
	s.log.Error(msg, fields...)
	if s.debugAssertions {
		panic("bookmarks: " + msg)
	}
}

func isTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// isCallerError reports errors caused by bad input rather than by the database.
func isCallerError(err error) bool {
	for _, target := range []error{
		ErrNoObjectID, ErrBadObjectID, ErrMissingParent, ErrMissingEntity,
		ErrMissingFavoritesRoot, ErrInvalidMove,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetMetadata returns the value stored under key, or "" when unset.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.perform(ctx, func() error {
		err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	})
	return value, err
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	return s.perform(ctx, func() error {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value)
		return err
	})
}
