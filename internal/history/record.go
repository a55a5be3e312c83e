package history

import (
	"context"
	"time"
)

// Record is one finished game as persisted. The initial FEN matters
// for Chess960 games, where the start position is not implied.
type Record struct {
	GameID      string
	WhiteID     string
	BlackID     string
	Result      string
	EndReason   string
	TimeControl string
	MovesUCI    []string
	MovesSAN    []string
	PGN         string
	InitialFEN  string
	FinalFEN    string
	StartedAt   time.Time
	EndedAt     time.Time
}

// Store records terminal games, exactly once per game id, and serves
// per-user history queries.
type Store interface {
	SaveGame(ctx context.Context, rec *Record) error
	RecentGames(ctx context.Context, userID string, limit int) ([]*Record, error)
}
