package handlers

import (
	"net/http"
	"time"

	"github.com/user/bookmarks/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Bookmarks     int     `json:"bookmarks"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Bookmarks:     d.Manager.List().Len(),
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
		})
	}
}
