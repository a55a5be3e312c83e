package rating

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// pgstore persists accounts in postgres.
//
// Expected schema:
//
//	CREATE TABLE arena_accounts (
//	    user_id      TEXT PRIMARY KEY,
//	    elo_bullet   INT NOT NULL DEFAULT 1200,
//	    elo_blitz    INT NOT NULL DEFAULT 1200,
//	    elo_rapid    INT NOT NULL DEFAULT 1200,
//	    games_played INT NOT NULL DEFAULT 0,
//	    games_won    INT NOT NULL DEFAULT 0,
//	    updated_at   TIMESTAMPTZ NOT NULL
//	);
type pgstore struct {
	db *sql.DB
}

func NewPGStore(databaseURL string) (Store, error) {
	db, err := openPG(databaseURL)
	if err != nil {
		return nil, err
	}
	return &pgstore{db: db}, nil
}

func openPG(databaseURL string) (*sql.DB, error) {
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
	return db, nil
}

func (s *pgstore) Get(ctx context.Context, userID string) (*Account, error) {
	const q = `
		SELECT user_id, elo_bullet, elo_blitz, elo_rapid, games_played, games_won, updated_at
		FROM arena_accounts
		WHERE user_id = $1`
	var acct Account
	err := s.db.QueryRowContext(ctx, q, strings.TrimSpace(userID)).Scan(
		&acct.UserID,
		&acct.EloBullet,
		&acct.EloBlitz,
		&acct.EloRapid,
		&acct.GamesPlayed,
		&acct.GamesWon,
		&acct.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acct, nil
}

func (s *pgstore) Upsert(ctx context.Context, account *Account) error {
	if account == nil || strings.TrimSpace(account.UserID) == "" {
		return nil
	}
	const q = `
		INSERT INTO arena_accounts (
			user_id, elo_bullet, elo_blitz, elo_rapid, games_played, games_won, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			elo_bullet = EXCLUDED.elo_bullet,
			elo_blitz = EXCLUDED.elo_blitz,
			elo_rapid = EXCLUDED.elo_rapid,
			games_played = EXCLUDED.games_played,
			games_won = EXCLUDED.games_won,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, q,
		account.UserID,
		account.EloBullet,
		account.EloBlitz,
		account.EloRapid,
		account.GamesPlayed,
		account.GamesWon,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}
