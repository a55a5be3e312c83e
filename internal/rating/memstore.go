package rating

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memstore is an in-memory Store used in tests and when no database
// is configured.
type memstore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewMemoryStore() Store {
	return &memstore{accounts: make(map[string]*Account)}
}

func (m *memstore) Get(ctx context.Context, userID string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[strings.TrimSpace(userID)]
	if !ok {
		return nil, nil
	}
	cp := *acct
	return &cp, nil
}

func (m *memstore) Upsert(ctx context.Context, account *Account) error {
	if account == nil || strings.TrimSpace(account.UserID) == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	cp.UpdatedAt = time.Now()
	m.accounts[cp.UserID] = &cp
	return nil
}
