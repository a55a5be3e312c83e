package session

import "time"

// Snapshot is the JSON form of a session kept in the archive store so
// late reconnects can query recently finished games.
type Snapshot struct {
	ID          string    `json:"id"`
	TimeControl string    `json:"time_control"`
	WhiteID     string    `json:"white_id"`
	BlackID     string    `json:"black_id,omitempty"`
	InitialFEN  string    `json:"initial_fen"`
	FEN         string    `json:"fen"`
	MovesUCI    []string  `json:"moves_uci"`
	MovesSAN    []string  `json:"moves_san"`
	WhiteMs     int64     `json:"white_ms"`
	BlackMs     int64     `json:"black_ms"`
	Result      Result    `json:"result"`
	EndReason   EndReason `json:"end_reason,omitempty"`
	WinnerID    string    `json:"winner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	EndedAt     time.Time `json:"ended_at,omitempty"`
}

// Players returns both user ids under the session lock. The black id
// is empty while the game is awaiting its second player.
func (s *Session) Players() (whiteID, blackID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.WhiteID, s.BlackID
}

// Snapshot captures the session state for archival.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		ID:          s.ID,
		TimeControl: s.TimeControl,
		WhiteID:     s.WhiteID,
		BlackID:     s.BlackID,
		InitialFEN:  s.InitialFEN,
		FEN:         s.pos.FEN(),
		MovesUCI:    append([]string(nil), s.MovesUCI...),
		MovesSAN:    append([]string(nil), s.MovesSAN...),
		WhiteMs:     s.WhiteMs,
		BlackMs:     s.BlackMs,
		Result:      s.Result,
		EndReason:   s.Reason,
		WinnerID:    s.WinnerID,
		CreatedAt:   s.CreatedAt,
		EndedAt:     s.EndedAt,
	}
}
