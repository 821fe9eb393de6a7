package handlers

import (
	"net/http"

	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/logger"
)

// Reload triggers a re-import of the watched export file.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no export file is watched"})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload triggered"})
		default:
			d.Logger.Warn("reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "reload already in progress"})
		}
	}
}
