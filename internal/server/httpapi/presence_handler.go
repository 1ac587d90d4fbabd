package httpapi

import (
	"context"
	"net/http"
)

// OnlineLister lists online usernames in ascending order.
type OnlineLister interface {
	ListOnlineUsers() []string
}

// Pinger checks the database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func onlineUsersHandler(presence OnlineLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, presence.ListOnlineUsers())
	}
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
