package history

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memstore is an in-memory Store used in tests and when no database
// is configured.
type memstore struct {
	mu     sync.RWMutex
	byID   map[string]*Record
	byUser map[string][]*Record
}

func NewMemoryStore() Store {
	return &memstore{
		byID:   make(map[string]*Record),
		byUser: make(map[string][]*Record),
	}
}

func (m *memstore) SaveGame(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.GameID) == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	if prev, exists := m.byID[cp.GameID]; exists {
		*prev = cp
		return nil
	}
	m.byID[cp.GameID] = &cp
	m.byUser[cp.WhiteID] = append(m.byUser[cp.WhiteID], &cp)
	if cp.BlackID != cp.WhiteID {
		m.byUser[cp.BlackID] = append(m.byUser[cp.BlackID], &cp)
	}
	return nil
}

func (m *memstore) RecentGames(ctx context.Context, userID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byUser[strings.TrimSpace(userID)]
	items := append([]*Record(nil), list...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].EndedAt.After(items[j].EndedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]*Record, 0, len(items))
	for _, r := range items {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
