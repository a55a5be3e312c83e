package arena

import (
	"context"
	"strings"

	"github.com/park285/chess960-arena/internal/history"
	"github.com/park285/chess960-arena/internal/rating"
	"github.com/park285/chess960-arena/internal/session"
)

// Account returns the user's rating card, materializing a default one
// for users that have never finished a game.
func (m *Manager) Account(ctx context.Context, userID string) (*rating.Account, error) {
	return m.ratings.Account(ctx, userID)
}

// RecentGames returns the user's finished games, most recent first.
func (m *Manager) RecentGames(ctx context.Context, userID string, limit int) ([]*history.Record, error) {
	return m.hist.RecentGames(ctx, userID, limit)
}

// GameSnapshot resolves a game id against the live registry first,
// then the archive. Returns nil when the game is unknown everywhere.
func (m *Manager) GameSnapshot(ctx context.Context, gameID string) (*session.Snapshot, error) {
	gameID = strings.TrimSpace(gameID)
	if s := m.registry.Get(gameID); s != nil {
		return s.Snapshot(), nil
	}
	if m.archive == nil {
		return nil, nil
	}
	return m.archive.Load(ctx, gameID)
}

// OnlineCount reports the number of distinct users with a live connection.
func (m *Manager) OnlineCount() int64 { return m.dir.OnlineCount() }

// ActiveGames reports the number of sessions in the live registry.
func (m *Manager) ActiveGames() int { return m.registry.Len() }

// PendingTickets reports how many players are queued for a time control.
func (m *Manager) PendingTickets(timeControl string) int {
	return m.queue.Pending(timeControl)
}
