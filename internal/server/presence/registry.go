// Package presence tracks which users are online. A user is online while
// at least one of their connections is open.
package presence

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/datingapp/internal/server/metrics"
)

// Registry maps usernames to their open connection ids. One mutex guards
// the whole map, so every operation sees a consistent snapshot.
type Registry struct {
	mu          sync.Mutex
	online      map[string]map[string]struct{}
	connections int
	recorder    metrics.Recorder
}

// NewRegistry returns an empty registry reporting gauges to rec.
// A nil rec disables reporting.
func NewRegistry(rec metrics.Recorder) *Registry {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Registry{
		online:   make(map[string]map[string]struct{}),
		recorder: rec,
	}
}

// Connect records connID for username and reports whether the user went
// from offline to online. Registering the same connID twice is a no-op.
func (r *Registry) Connect(username, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.online[username]
	if !ok {
		conns = make(map[string]struct{})
		r.online[username] = conns
	}
	if _, dup := conns[connID]; !dup {
		conns[connID] = struct{}{}
		r.connections++
	}

	r.report()
	return !ok
}

// Disconnect forgets connID and reports whether it was the user's last
// connection. Unknown users and connections are ignored.
func (r *Registry) Disconnect(username, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.online[username]
	if !ok {
		return false
	}
	if _, known := conns[connID]; !known {
		return false
	}

	delete(conns, connID)
	r.connections--

	wentOffline := len(conns) == 0
	if wentOffline {
		delete(r.online, username)
	}

	r.report()
	return wentOffline
}

// ListOnlineUsers returns the online usernames in ascending order.
func (r *Registry) ListOnlineUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]string, 0, len(r.online))
	for name := range r.online {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

// ConnectionsFor returns a sorted copy of the user's connection ids, or
// false when the user is offline.
func (r *Registry) ConnectionsFor(username string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.online[username]
	if !ok {
		return nil, false
	}

	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, true
}

// report must be called with mu held.
func (r *Registry) report() {
	r.recorder.SetPresence(len(r.online), r.connections)
}
