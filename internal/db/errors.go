package db

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreDeallocated is returned for operations submitted after Close.
	ErrStoreDeallocated = errors.New("bookmark store closed")
	ErrInsertFailed     = errors.New("insert failed")
	ErrNoObjectID       = errors.New("missing object id")
	ErrBadObjectID      = errors.New("bad object id")
	// ErrMissingParent means neither the requested parent nor the root could be resolved.
	ErrMissingParent        = errors.New("missing parent folder")
	ErrAsyncFetchFailed     = errors.New("fetch failed")
	ErrMissingEntity        = errors.New("entity not found")
	ErrMissingRoot          = errors.New("root folder missing")
	ErrMissingFavoritesRoot = errors.New("favorites folder missing")
	// ErrInvalidMove is returned when a folder would end up inside itself.
	ErrInvalidMove = errors.New("folder cannot be moved into itself or a descendant")
)

// SaveLoopError is returned when every save attempt hit a transient conflict.
type SaveLoopError struct {
	Attempts int
	Err      error
}

func (e *SaveLoopError) Error() string {
	return fmt.Sprintf("save failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SaveLoopError) Unwrap() error {
	return e.Err
}
