package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/park285/chess960-arena/internal/session"
	"go.uber.org/zap"
)

// Format buckets a time control by base minutes. Thresholds are policy
// constants, not configuration.
type Format string

const (
	FormatBullet Format = "bullet"
	FormatBlitz  Format = "blitz"
	FormatRapid  Format = "rapid"

	bulletMaxMinutes = 3
	blitzMaxMinutes  = 10

	kFactor = 32
)

// FormatFor maps a time-control descriptor to its rating format.
func FormatFor(timeControl string) Format {
	base := session.BaseMinutes(timeControl)
	switch {
	case base > 0 && base < bulletMaxMinutes:
		return FormatBullet
	case base > 0 && base < blitzMaxMinutes:
		return FormatBlitz
	default:
		return FormatRapid
	}
}

// Outcome is a terminal game result from White's perspective.
type Outcome string

const (
	OutcomeWhiteWon Outcome = "white_won"
	OutcomeBlackWon Outcome = "black_won"
	OutcomeDraw     Outcome = "draw"
)

// Update reports the post-game ratings and the applied deltas.
type Update struct {
	WhiteRating int
	BlackRating int
	WhiteDelta  int
	BlackDelta  int
}

// Service computes and persists Elo adjustments. It reads and writes
// accounts through the store but does not own them.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetRatings is the read-only path used for pre-game display and for
// aborted games, which must never mutate ratings.
func (s *Service) GetRatings(ctx context.Context, whiteID, blackID, timeControl string) (whiteRating, blackRating int, err error) {
	f := FormatFor(timeControl)
	white, err := s.account(ctx, whiteID)
	if err != nil {
		return 0, 0, err
	}
	black, err := s.account(ctx, blackID)
	if err != nil {
		return 0, 0, err
	}
	return white.RatingFor(f), black.RatingFor(f), nil
}

// Rating returns one user's rating in the format of the time control.
func (s *Service) Rating(ctx context.Context, userID, timeControl string) (int, error) {
	acct, err := s.account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.RatingFor(FormatFor(timeControl)), nil
}

// Account returns the full record, defaulted for unknown users.
func (s *Service) Account(ctx context.Context, userID string) (*Account, error) {
	return s.account(ctx, userID)
}

// UpdateRatings applies the K-factor update for a decisive or drawn
// game and persists both accounts. Aborted games must not reach this
// path.
func (s *Service) UpdateRatings(ctx context.Context, whiteID, blackID string, outcome Outcome, timeControl string) (Update, error) {
	f := FormatFor(timeControl)
	white, err := s.account(ctx, whiteID)
	if err != nil {
		return Update{}, err
	}
	black, err := s.account(ctx, blackID)
	if err != nil {
		return Update{}, err
	}

	whiteRating := white.RatingFor(f)
	blackRating := black.RatingFor(f)

	expectedWhite := 1 / (1 + math.Pow(10, float64(blackRating-whiteRating)/400))
	expectedBlack := 1 / (1 + math.Pow(10, float64(whiteRating-blackRating)/400))

	actualWhite := 0.5
	switch outcome {
	case OutcomeWhiteWon:
		actualWhite = 1
	case OutcomeBlackWon:
		actualWhite = 0
	}
	actualBlack := 1 - actualWhite

	whiteDelta := int(math.Round(kFactor * (actualWhite - expectedWhite)))
	blackDelta := int(math.Round(kFactor * (actualBlack - expectedBlack)))

	white.setRating(f, whiteRating+whiteDelta)
	black.setRating(f, blackRating+blackDelta)
	white.GamesPlayed++
	black.GamesPlayed++
	if actualWhite == 1 {
		white.GamesWon++
	}
	if actualBlack == 1 {
		black.GamesWon++
	}

	if err := s.store.Upsert(ctx, white); err != nil {
		return Update{}, fmt.Errorf("persist white account: %w", err)
	}
	if err := s.store.Upsert(ctx, black); err != nil {
		return Update{}, fmt.Errorf("persist black account: %w", err)
	}

	obslog.L().Info("rating_update",
		zap.String("format", string(f)),
		zap.String("white_id", whiteID),
		zap.String("black_id", blackID),
		zap.Int("white_delta", whiteDelta),
		zap.Int("black_delta", blackDelta),
	)
	return Update{
		WhiteRating: white.RatingFor(f),
		BlackRating: black.RatingFor(f),
		WhiteDelta:  whiteDelta,
		BlackDelta:  blackDelta,
	}, nil
}

func (s *Service) account(ctx context.Context, userID string) (*Account, error) {
	acct, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = NewAccount(userID)
	}
	return acct, nil
}
