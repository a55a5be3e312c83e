package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// pgstore persists finished games in postgres.
//
// Expected schema:
//
//	CREATE TABLE arena_games (
//	    game_id      TEXT PRIMARY KEY,
//	    white_id     TEXT NOT NULL,
//	    black_id     TEXT NOT NULL,
//	    result       TEXT NOT NULL,
//	    end_reason   TEXT NOT NULL,
//	    time_control TEXT NOT NULL,
//	    moves_uci    JSONB NOT NULL,
//	    moves_san    JSONB NOT NULL,
//	    pgn          TEXT NOT NULL,
//	    initial_fen  TEXT NOT NULL,
//	    final_fen    TEXT NOT NULL,
//	    started_at   TIMESTAMPTZ NOT NULL,
//	    ended_at     TIMESTAMPTZ NOT NULL,
//	    duration_ms  BIGINT NOT NULL
//	);
type pgstore struct {
	db *sql.DB
}

func NewPGStore(databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &pgstore{db: db}, nil
}

// SaveGame upserts by game id so a retried terminal pipeline stays
// idempotent.
func (s *pgstore) SaveGame(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	movesUCI, err := json.Marshal(rec.MovesUCI)
	if err != nil {
		return fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(rec.MovesSAN)
	if err != nil {
		return fmt.Errorf("marshal moves_san: %w", err)
	}
	duration := rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	const q = `
		INSERT INTO arena_games (
			game_id, white_id, black_id, result, end_reason, time_control,
			moves_uci, moves_san, pgn, initial_fen, final_fen,
			started_at, ended_at, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8::jsonb,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (game_id) DO UPDATE SET
			result = EXCLUDED.result,
			end_reason = EXCLUDED.end_reason,
			moves_uci = EXCLUDED.moves_uci,
			moves_san = EXCLUDED.moves_san,
			pgn = EXCLUDED.pgn,
			final_fen = EXCLUDED.final_fen,
			ended_at = EXCLUDED.ended_at,
			duration_ms = EXCLUDED.duration_ms`
	_, err = s.db.ExecContext(ctx, q,
		rec.GameID,
		rec.WhiteID, rec.BlackID,
		rec.Result, rec.EndReason, rec.TimeControl,
		string(movesUCI), string(movesSAN), rec.PGN,
		rec.InitialFEN, rec.FinalFEN,
		rec.StartedAt, rec.EndedAt, duration,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *pgstore) RecentGames(ctx context.Context, userID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT game_id, white_id, black_id, result, end_reason, time_control,
			moves_uci, moves_san, pgn, initial_fen, final_fen, started_at, ended_at
		FROM arena_games
		WHERE white_id = $1 OR black_id = $1
		ORDER BY ended_at DESC
		LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var movesUCI, movesSAN []byte
		if err := rows.Scan(
			&rec.GameID, &rec.WhiteID, &rec.BlackID,
			&rec.Result, &rec.EndReason, &rec.TimeControl,
			&movesUCI, &movesSAN, &rec.PGN,
			&rec.InitialFEN, &rec.FinalFEN,
			&rec.StartedAt, &rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		if err := json.Unmarshal(movesUCI, &rec.MovesUCI); err != nil {
			return nil, fmt.Errorf("decode moves_uci: %w", err)
		}
		if err := json.Unmarshal(movesSAN, &rec.MovesSAN); err != nil {
			return nil, fmt.Errorf("decode moves_san: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
