package arena

import (
	"context"
	"strings"
	"time"

	"github.com/park285/chess960-arena/internal/board"
	"github.com/park285/chess960-arena/internal/directory"
	"github.com/park285/chess960-arena/internal/history"
	"github.com/park285/chess960-arena/internal/matchq"
	"github.com/park285/chess960-arena/internal/notify"
	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/park285/chess960-arena/internal/rating"
	"github.com/park285/chess960-arena/internal/session"
	"github.com/park285/chess960-arena/pkg/gamedto"
	"go.uber.org/zap"
)

// Manager is the coordinating core behind the transport layer. Every
// operation mutates state under the owning component's discipline and
// returns the outbound events the transport should fan out. Rejected
// or stale requests return no events: callers re-derive legal actions
// from broadcast state, not from error codes.
type Manager struct {
	queue    *matchq.Queue
	registry *session.Registry
	ratings  *rating.Service
	dir      *directory.Directory
	hist     history.Store
	archive  *session.Archive
	webhook  *notify.Webhook

	chess960         bool
	defaultTolerance int
}

type Params struct {
	Ratings   *rating.Service
	History   history.Store
	Directory *directory.Directory
	Archive   *session.Archive // optional
	Webhook   *notify.Webhook  // optional

	Chess960         bool
	DefaultTolerance int
	Now              func() time.Time
}

func New(p Params) *Manager {
	m := &Manager{
		queue:            matchq.New(p.Directory),
		registry:         session.NewRegistry(),
		ratings:          p.Ratings,
		dir:              p.Directory,
		hist:             p.History,
		archive:          p.Archive,
		webhook:          p.Webhook,
		chess960:         p.Chess960,
		defaultTolerance: p.DefaultTolerance,
	}
	if m.defaultTolerance <= 0 {
		m.defaultTolerance = 400
	}
	if p.Now != nil {
		m.registry.SetNow(p.Now)
	}
	return m
}

// Connect registers the user's live connection.
func (m *Manager) Connect(userID, connID string) {
	m.dir.Connect(userID, connID)
	obslog.L().Info("user_connected",
		zap.String("user_id", userID),
		zap.Int64("online", m.dir.OnlineCount()),
	)
}

// Disconnect unregisters the connection and drops any pending match
// tickets the user still owns.
func (m *Manager) Disconnect(userID, connID string) {
	if m.dir.Disconnect(userID, connID) {
		m.queue.CancelUser(userID)
		obslog.L().Info("user_disconnected",
			zap.String("user_id", userID),
			zap.Int64("online", m.dir.OnlineCount()),
		)
	}
}

// RequestMatch pairs the caller with a compatible waiting player or
// enqueues a ticket. The caller either receives GameStarted (both
// players do) or WaitingForMatch.
func (m *Manager) RequestMatch(ctx context.Context, connID, userID, timeControl string, tolerance int) []gamedto.Outbound {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	if _, _, err := session.ParseTimeControl(timeControl); err != nil {
		obslog.L().Warn("match_bad_time_control", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if tolerance <= 0 {
		tolerance = m.defaultTolerance
	}
	userRating := m.ratingOrDefault(ctx, userID, timeControl)

	pair := m.queue.Request(matchq.Ticket{
		ConnID:      connID,
		UserID:      userID,
		TimeControl: timeControl,
		Rating:      userRating,
		Tolerance:   tolerance,
	})
	if pair == nil {
		obslog.L().Info("match_enqueued",
			zap.String("user_id", userID),
			zap.String("time_control", timeControl),
			zap.Int("rating", userRating),
		)
		return []gamedto.Outbound{{
			To:    []string{userID},
			Event: gamedto.WaitingForMatch{TimeControl: timeControl},
		}}
	}
	return m.startMatched(ctx, pair, timeControl)
}

func (m *Manager) startMatched(ctx context.Context, pair *matchq.Pair, timeControl string) []gamedto.Outbound {
	params := session.Params{
		TimeControl: timeControl,
		WhiteID:     pair.White.UserID,
		WhiteConn:   pair.White.ConnID,
		BlackID:     pair.Black.UserID,
		BlackConn:   pair.Black.ConnID,
	}
	if m.chess960 {
		params.InitialFEN = board.GenerateChess960FEN()
	}
	s, err := m.registry.Create(params)
	if err != nil && params.InitialFEN != "" {
		obslog.L().Warn("chess960_start_rejected", zap.Error(err))
		params.InitialFEN = ""
		s, err = m.registry.Create(params)
	}
	if err != nil {
		obslog.L().Error("session_create_error", zap.Error(err))
		return nil
	}
	m.saveSnapshot(ctx, s)

	whiteRating, blackRating := m.ratingsOrDefault(ctx, pair.White.UserID, pair.Black.UserID, timeControl)
	whiteMs, blackMs := s.Clocks()
	obslog.L().Info("match_found",
		zap.String("game_id", s.ID),
		zap.String("white_id", pair.White.UserID),
		zap.String("black_id", pair.Black.UserID),
		zap.String("time_control", timeControl),
	)
	return []gamedto.Outbound{{
		To: recipients(pair.White.UserID, pair.Black.UserID),
		Event: gamedto.GameStarted{
			GameID:      s.ID,
			Position:    s.FEN(),
			WhiteID:     pair.White.UserID,
			BlackID:     pair.Black.UserID,
			WhiteMs:     whiteMs,
			BlackMs:     blackMs,
			WhiteRating: whiteRating,
			BlackRating: blackRating,
			TimeControl: timeControl,
		},
	}}
}

// CreateGame opens a private game with an absent opponent slot. The
// game id doubles as the invite code; clocks start when the second
// player joins.
func (m *Manager) CreateGame(ctx context.Context, connID, userID, timeControl string) []gamedto.Outbound {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	if _, _, err := session.ParseTimeControl(timeControl); err != nil {
		obslog.L().Warn("create_bad_time_control", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	params := session.Params{
		TimeControl: timeControl,
		WhiteID:     userID,
		WhiteConn:   connID,
	}
	if m.chess960 {
		params.InitialFEN = board.GenerateChess960FEN()
	}
	s, err := m.registry.Create(params)
	if err != nil && params.InitialFEN != "" {
		obslog.L().Warn("chess960_start_rejected", zap.Error(err))
		params.InitialFEN = ""
		s, err = m.registry.Create(params)
	}
	if err != nil {
		obslog.L().Error("session_create_error", zap.Error(err))
		return nil
	}
	m.saveSnapshot(ctx, s)
	obslog.L().Info("game_created",
		zap.String("game_id", s.ID),
		zap.String("host_id", userID),
		zap.String("time_control", timeControl),
	)
	return []gamedto.Outbound{{
		To: []string{userID},
		Event: gamedto.GameCreated{
			GameID:      s.ID,
			Position:    s.FEN(),
			TimeControl: timeControl,
		},
	}}
}

// JoinGame fills the absent opponent slot, or re-syncs a reconnecting
// participant.
func (m *Manager) JoinGame(ctx context.Context, connID, userID, gameID string) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil {
		return nil
	}
	out, ok := s.Join(userID, connID)
	if !ok {
		return nil
	}
	whiteID, blackID := s.Players()
	whiteRating, blackRating := m.ratingsOrDefault(ctx, whiteID, blackID, s.TimeControl)
	whiteMs, blackMs := s.Clocks()
	started := gamedto.GameStarted{
		GameID:      s.ID,
		Position:    s.FEN(),
		WhiteID:     whiteID,
		BlackID:     blackID,
		WhiteMs:     whiteMs,
		BlackMs:     blackMs,
		WhiteRating: whiteRating,
		BlackRating: blackRating,
		TimeControl: s.TimeControl,
	}
	if out.Started {
		m.saveSnapshot(ctx, s)
		obslog.L().Info("game_started",
			zap.String("game_id", s.ID),
			zap.String("white_id", whiteID),
			zap.String("black_id", blackID),
		)
		return []gamedto.Outbound{{To: recipients(whiteID, blackID), Event: started}}
	}
	// reconnect: re-send current state to the rejoining player only
	return []gamedto.Outbound{{To: []string{strings.TrimSpace(userID)}, Event: started}}
}

// ApplyMove runs the session's clock-then-move transition. A flag fall
// yields only GameOver; an applied move yields MoveMade, plus GameOver
// when it ended the game, in that order.
func (m *Manager) ApplyMove(ctx context.Context, userID, gameID, move string) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil {
		return nil
	}
	out, ok := s.ApplyMove(userID, move)
	if !ok {
		return nil
	}
	whiteID, blackID := s.Players()
	both := recipients(whiteID, blackID)

	var events []gamedto.Outbound
	if !out.Flagged {
		events = append(events, gamedto.Outbound{To: both, Event: gamedto.MoveMade{
			GameID:   s.ID,
			Move:     out.UCI,
			SAN:      out.SAN,
			Position: out.FEN,
			WhiteMs:  out.WhiteMs,
			BlackMs:  out.BlackMs,
		}})
	}
	if out.Ended {
		events = append(events, gamedto.Outbound{To: both, Event: m.finalize(ctx, s)})
	}
	return events
}

// Resign ends the game in the opponent's favor.
func (m *Manager) Resign(ctx context.Context, userID, gameID string) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil || !s.Resign(userID) {
		return nil
	}
	whiteID, blackID := s.Players()
	return []gamedto.Outbound{{To: recipients(whiteID, blackID), Event: m.finalize(ctx, s)}}
}

// Abort cancels a game that has not really started. Aborted games
// never touch ratings.
func (m *Manager) Abort(ctx context.Context, userID, gameID string) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil || !s.Abort(userID) {
		return nil
	}
	whiteID, blackID := s.Players()
	return []gamedto.Outbound{{To: recipients(whiteID, blackID), Event: m.finalize(ctx, s)}}
}

// OfferDraw marks the caller as the pending offerer.
func (m *Manager) OfferDraw(ctx context.Context, userID, gameID string) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil || !s.OfferDraw(userID) {
		return nil
	}
	whiteID, blackID := s.Players()
	return []gamedto.Outbound{{
		To:    recipients(whiteID, blackID),
		Event: gamedto.DrawOffered{GameID: s.ID, ByUserID: strings.TrimSpace(userID)},
	}}
}

// RespondDraw accepts or declines a pending offer from the other player.
func (m *Manager) RespondDraw(ctx context.Context, userID, gameID string, accept bool) []gamedto.Outbound {
	s := m.registry.Get(strings.TrimSpace(gameID))
	if s == nil {
		return nil
	}
	accepted, ok := s.RespondDraw(userID, accept)
	if !ok {
		return nil
	}
	whiteID, blackID := s.Players()
	both := recipients(whiteID, blackID)
	if accepted {
		return []gamedto.Outbound{{To: both, Event: m.finalize(ctx, s)}}
	}
	return []gamedto.Outbound{{To: both, Event: gamedto.DrawDeclined{GameID: s.ID}}}
}

func recipients(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out
}

func (m *Manager) ratingOrDefault(ctx context.Context, userID, timeControl string) int {
	r, err := m.ratings.Rating(ctx, userID, timeControl)
	if err != nil {
		obslog.L().Error("rating_read_error", zap.String("user_id", userID), zap.Error(err))
		return rating.DefaultRating
	}
	return r
}

func (m *Manager) ratingsOrDefault(ctx context.Context, whiteID, blackID, timeControl string) (int, int) {
	w, b, err := m.ratings.GetRatings(ctx, whiteID, blackID, timeControl)
	if err != nil {
		obslog.L().Error("rating_read_error",
			zap.String("white_id", whiteID),
			zap.String("black_id", blackID),
			zap.Error(err),
		)
		return rating.DefaultRating, rating.DefaultRating
	}
	return w, b
}

func (m *Manager) saveSnapshot(ctx context.Context, s *session.Session) {
	if m.archive == nil {
		return
	}
	if err := m.archive.Save(ctx, s.Snapshot()); err != nil {
		obslog.L().Warn("archive_save_error", zap.String("game_id", s.ID), zap.Error(err))
	}
}
