package deps

import (
	"time"

	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/manager"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Manager   *manager.Manager // Bookmark operations, list already loaded
	TimeNow   func() time.Time // for testing, defaults to time.Now

	// ReloadTrigger starts a re-import of the watched export file (nil if none is watched)
	ReloadTrigger chan struct{}
}
