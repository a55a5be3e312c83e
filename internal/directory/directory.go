package directory

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Directory maps durable user ids to their currently active transport
// connection. Entries are independent per user; last writer wins, so a
// reconnect simply overwrites the previous connection id.
type Directory struct {
	mu     sync.RWMutex
	conns  map[string]string // user id -> connection id
	online atomic.Int64
}

func New() *Directory {
	return &Directory{conns: make(map[string]string)}
}

// Connect upserts the user's connection. Reconnects replace the old
// entry without touching the online counter.
func (d *Directory) Connect(userID, connID string) {
	userID = strings.TrimSpace(userID)
	if userID == "" || connID == "" {
		return
	}
	d.mu.Lock()
	_, existed := d.conns[userID]
	d.conns[userID] = connID
	d.mu.Unlock()
	if !existed {
		d.online.Add(1)
	}
}

// Disconnect removes the entry only when it still belongs to the given
// connection, so a reconnect racing a stale disconnect is not clobbered.
// It reports whether the entry was actually removed.
func (d *Directory) Disconnect(userID, connID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	d.mu.Lock()
	current, ok := d.conns[userID]
	if ok && current == connID {
		delete(d.conns, userID)
	} else {
		ok = false
	}
	d.mu.Unlock()
	if ok {
		d.online.Add(-1)
	}
	return ok
}

// ConnFor resolves a user id to its live connection id.
func (d *Directory) ConnFor(userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	connID, ok := d.conns[strings.TrimSpace(userID)]
	return connID, ok
}

func (d *Directory) IsOnline(userID string) bool {
	_, ok := d.ConnFor(userID)
	return ok
}

// OnlineCount is the number of distinct users with a live connection.
func (d *Directory) OnlineCount() int64 { return d.online.Load() }
