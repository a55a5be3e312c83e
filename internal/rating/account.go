package rating

import (
	"context"
	"time"
)

// DefaultRating is the baseline for accounts that have never played a
// rated game in a format.
const DefaultRating = 1200

// Account is the per-user rating record: one Elo number per format
// plus lifetime counters.
type Account struct {
	UserID      string
	EloBullet   int
	EloBlitz    int
	EloRapid    int
	GamesPlayed int
	GamesWon    int
	UpdatedAt   time.Time
}

func NewAccount(userID string) *Account {
	return &Account{
		UserID:    userID,
		EloBullet: DefaultRating,
		EloBlitz:  DefaultRating,
		EloRapid:  DefaultRating,
	}
}

func (a *Account) RatingFor(f Format) int {
	switch f {
	case FormatBullet:
		return a.EloBullet
	case FormatBlitz:
		return a.EloBlitz
	default:
		return a.EloRapid
	}
}

func (a *Account) setRating(f Format, rating int) {
	switch f {
	case FormatBullet:
		a.EloBullet = rating
	case FormatBlitz:
		a.EloBlitz = rating
	default:
		a.EloRapid = rating
	}
}

// Store persists accounts. Get returns nil without error for unknown
// users; callers fall back to NewAccount.
type Store interface {
	Get(ctx context.Context, userID string) (*Account, error)
	Upsert(ctx context.Context, account *Account) error
}
