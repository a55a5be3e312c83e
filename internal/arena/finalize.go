package arena

import (
	"context"

	"github.com/park285/chess960-arena/internal/history"
	"github.com/park285/chess960-arena/internal/notify"
	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/park285/chess960-arena/internal/rating"
	"github.com/park285/chess960-arena/internal/session"
	"github.com/park285/chess960-arena/pkg/gamedto"
	"go.uber.org/zap"
)

// finalize runs the one-shot terminal pipeline for a session that just
// reached a terminal result: settle ratings, persist the game record,
// archive the closing snapshot, fire the webhook, and evict the session
// from the live registry. Persistence failures are logged and the
// pipeline keeps going; the GameOver event is always produced.
func (m *Manager) finalize(ctx context.Context, s *session.Session) gamedto.GameOver {
	snap := s.Snapshot()
	upd := m.settleRatings(ctx, snap)

	rec := history.Record{
		GameID:      snap.ID,
		WhiteID:     snap.WhiteID,
		BlackID:     snap.BlackID,
		Result:      string(snap.Result),
		EndReason:   string(snap.EndReason),
		TimeControl: snap.TimeControl,
		MovesUCI:    snap.MovesUCI,
		MovesSAN:    snap.MovesSAN,
		InitialFEN:  snap.InitialFEN,
		FinalFEN:    snap.FEN,
		StartedAt:   snap.CreatedAt,
		EndedAt:     snap.EndedAt,
	}
	rec.PGN = history.BuildPGN(&rec)
	if err := m.hist.SaveGame(ctx, &rec); err != nil {
		obslog.L().Error("history_save_error", zap.String("game_id", snap.ID), zap.Error(err))
	}
	m.saveSnapshot(ctx, s)
	m.registry.Remove(snap.ID)

	obslog.L().Info("game_over",
		zap.String("game_id", snap.ID),
		zap.String("result", string(snap.Result)),
		zap.String("reason", string(snap.EndReason)),
		zap.String("winner_id", snap.WinnerID),
		zap.Int("moves", len(snap.MovesUCI)),
	)

	if m.webhook != nil {
		notice := notify.GameOverNotice{
			GameID:      snap.ID,
			WhiteID:     snap.WhiteID,
			BlackID:     snap.BlackID,
			Result:      string(snap.Result),
			Reason:      string(snap.EndReason),
			WinnerID:    snap.WinnerID,
			TimeControl: snap.TimeControl,
			EndedAt:     snap.EndedAt,
		}
		go m.webhook.GameOver(notice)
	}

	return gamedto.GameOver{
		GameID:      snap.ID,
		WinnerID:    snap.WinnerID,
		Result:      string(snap.Result),
		Reason:      string(snap.EndReason),
		Position:    snap.FEN,
		WhiteRating: upd.WhiteRating,
		BlackRating: upd.BlackRating,
		WhiteDelta:  upd.WhiteDelta,
		BlackDelta:  upd.BlackDelta,
	}
}

// settleRatings mutates ratings for decisive and drawn games. Aborted
// games, and games that never gained a second player, only read the
// current values so the GameOver payload still carries them.
func (m *Manager) settleRatings(ctx context.Context, snap *session.Snapshot) rating.Update {
	if snap.Result == session.ResultAborted || snap.BlackID == "" {
		w, b := m.ratingsOrDefault(ctx, snap.WhiteID, snap.BlackID, snap.TimeControl)
		return rating.Update{WhiteRating: w, BlackRating: b}
	}
	var outcome rating.Outcome
	switch snap.Result {
	case session.ResultWhiteWon:
		outcome = rating.OutcomeWhiteWon
	case session.ResultBlackWon:
		outcome = rating.OutcomeBlackWon
	default:
		outcome = rating.OutcomeDraw
	}
	upd, err := m.ratings.UpdateRatings(ctx, snap.WhiteID, snap.BlackID, outcome, snap.TimeControl)
	if err != nil {
		obslog.L().Error("rating_update_error", zap.String("game_id", snap.ID), zap.Error(err))
		w, b := m.ratingsOrDefault(ctx, snap.WhiteID, snap.BlackID, snap.TimeControl)
		return rating.Update{WhiteRating: w, BlackRating: b}
	}
	return upd
}
