package session

import (
	"strings"
	"sync"
	"time"

	"github.com/park285/chess960-arena/internal/board"
)

// Session is the authoritative in-memory record of one game. All
// mutating methods take the session mutex; rejected actions (wrong
// turn, terminal game, non-participant) are silent no-ops that return
// ok=false and change nothing.
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	ID          string
	TimeControl string

	WhiteID   string
	BlackID   string // empty until the second player joins
	WhiteConn string
	BlackConn string

	InitialFEN string
	pos        *board.Position

	MovesUCI []string
	MovesSAN []string

	baseMs      int64
	incrementMs int64
	WhiteMs     int64
	BlackMs     int64
	lastEventAt time.Time

	drawOfferBy string

	Result    Result
	Reason    EndReason
	WinnerID  string
	CreatedAt time.Time
	EndedAt   time.Time
}

// Params configures a new session. BlackID may be empty for the
// private/challenge flow; the game then starts on Join.
type Params struct {
	ID          string
	TimeControl string
	WhiteID     string
	WhiteConn   string
	BlackID     string
	BlackConn   string
	InitialFEN  string // empty means the standard starting position
	Now         func() time.Time
}

func New(p Params) (*Session, error) {
	baseMs, incMs, err := ParseTimeControl(p.TimeControl)
	if err != nil {
		return nil, err
	}
	pos, err := board.New(p.InitialFEN)
	if err != nil {
		return nil, err
	}
	nowFn := p.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	s := &Session{
		now:         nowFn,
		ID:          p.ID,
		TimeControl: strings.TrimSpace(p.TimeControl),
		WhiteID:     strings.TrimSpace(p.WhiteID),
		BlackID:     strings.TrimSpace(p.BlackID),
		WhiteConn:   p.WhiteConn,
		BlackConn:   p.BlackConn,
		InitialFEN:  pos.FEN(),
		pos:         pos,
		baseMs:      baseMs,
		incrementMs: incMs,
		WhiteMs:     baseMs,
		BlackMs:     baseMs,
		Result:      ResultActive,
		CreatedAt:   nowFn(),
	}
	if s.BlackID != "" {
		s.lastEventAt = s.CreatedAt
	}
	return s, nil
}

// Join is the only absent-to-present transition for the black slot,
// and doubles as reconnection for either existing participant.
func (s *Session) Join(userID, connID string) (JoinOutcome, bool) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return JoinOutcome{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive {
		return JoinOutcome{}, false
	}
	switch {
	case userID == s.WhiteID:
		s.WhiteConn = connID
		return JoinOutcome{Reconnected: true}, true
	case userID == s.BlackID:
		s.BlackConn = connID
		return JoinOutcome{Reconnected: true}, true
	case s.BlackID == "":
		s.BlackID = userID
		s.BlackConn = connID
		s.lastEventAt = s.now()
		return JoinOutcome{Started: true}, true
	}
	return JoinOutcome{}, false
}

// ApplyMove runs clock accounting, then applies the move if the clock
// did not flag. Only the side to move, identified by user id, is
// accepted. The ok return is false for every silent rejection.
func (s *Session) ApplyMove(userID, move string) (MoveOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive || s.BlackID == "" {
		return MoveOutcome{}, false
	}
	mover, ok := s.colorOf(userID)
	if !ok {
		return MoveOutcome{}, false
	}
	if s.pos.WhiteToMove() != (mover == White) {
		return MoveOutcome{}, false
	}

	nowT := s.now()
	elapsed := nowT.Sub(s.lastEventAt).Milliseconds()
	remaining := s.WhiteMs
	if mover == Black {
		remaining = s.BlackMs
	}
	remaining -= elapsed

	if remaining < 0 {
		// flag fall: the move is never applied, the negative balance
		// is reported as-is and clamped by display layers
		s.setRemaining(mover, remaining)
		s.finish(wonBy(opponent(mover)), EndTimeout, s.opponentID(mover), nowT)
		return s.moveOutcome("", ""), true
	}

	san, uci, err := s.pos.ApplyUCI(move)
	if err != nil {
		// illegal or malformed: no state change, clock untouched
		return MoveOutcome{}, false
	}

	s.setRemaining(mover, remaining+s.incrementMs)
	s.lastEventAt = nowT
	s.MovesUCI = append(s.MovesUCI, uci)
	s.MovesSAN = append(s.MovesSAN, san)
	s.drawOfferBy = ""

	switch {
	case s.pos.Checkmate():
		s.finish(wonBy(mover), EndCheckmate, userID, nowT)
	case s.pos.Stalemate():
		s.finish(ResultDraw, EndStalemate, "", nowT)
	case s.pos.Terminal():
		s.finish(ResultDraw, EndDrawRule, "", nowT)
	}
	return s.moveOutcome(uci, san), true
}

// Resign ends an active game in the opponent's favor. Allowed for
// either player at any point after both sides are present.
func (s *Session) Resign(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive || s.BlackID == "" {
		return false
	}
	mover, ok := s.colorOf(userID)
	if !ok {
		return false
	}
	s.finish(wonBy(opponent(mover)), EndResignation, s.opponentID(mover), s.now())
	return true
}

// Abort cancels a game that has not really started: White with zero
// moves played, Black with at most one. No winner, no rating change.
func (s *Session) Abort(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive {
		return false
	}
	userID = strings.TrimSpace(userID)
	switch {
	case userID == s.WhiteID && len(s.MovesUCI) == 0:
	case userID == s.BlackID && s.BlackID != "" && len(s.MovesUCI) <= 1:
	default:
		return false
	}
	s.finish(ResultAborted, EndAborted, "", s.now())
	return true
}

// OfferDraw records the caller as the pending offerer, overwriting any
// prior offer.
func (s *Session) OfferDraw(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive || s.BlackID == "" {
		return false
	}
	if _, ok := s.colorOf(userID); !ok {
		return false
	}
	s.drawOfferBy = strings.TrimSpace(userID)
	return true
}

// RespondDraw lets the non-offering player accept or decline a pending
// offer. Accepting one's own offer is rejected.
func (s *Session) RespondDraw(userID string, accept bool) (accepted, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Result != ResultActive || s.drawOfferBy == "" {
		return false, false
	}
	userID = strings.TrimSpace(userID)
	if _, participant := s.colorOf(userID); !participant || userID == s.drawOfferBy {
		return false, false
	}
	if accept {
		s.finish(ResultDraw, EndDrawAgreed, "", s.now())
		return true, true
	}
	s.drawOfferBy = ""
	return false, true
}

// DrawOfferBy returns the user id of the pending offerer, if any.
func (s *Session) DrawOfferBy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawOfferBy
}

// Clocks returns both remaining times in milliseconds. Values are not
// decremented between moves; callers derive live display themselves.
func (s *Session) Clocks() (whiteMs, blackMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.WhiteMs, s.BlackMs
}

func (s *Session) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.FEN()
}

// State returns the terminal triple under the session lock.
func (s *Session) State() (Result, EndReason, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Result, s.Reason, s.WinnerID
}

func (s *Session) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.MovesUCI)
}

func (s *Session) finish(result Result, reason EndReason, winnerID string, at time.Time) {
	s.Result = result
	s.Reason = reason
	s.WinnerID = winnerID
	s.EndedAt = at
	s.drawOfferBy = ""
}

func (s *Session) colorOf(userID string) (Color, bool) {
	userID = strings.TrimSpace(userID)
	switch {
	case userID != "" && userID == s.WhiteID:
		return White, true
	case userID != "" && userID == s.BlackID:
		return Black, true
	}
	return "", false
}

func (s *Session) opponentID(c Color) string {
	if c == White {
		return s.BlackID
	}
	return s.WhiteID
}

func (s *Session) setRemaining(c Color, ms int64) {
	if c == White {
		s.WhiteMs = ms
	} else {
		s.BlackMs = ms
	}
}

func (s *Session) moveOutcome(uci, san string) MoveOutcome {
	out := MoveOutcome{
		UCI:     uci,
		SAN:     san,
		FEN:     s.pos.FEN(),
		WhiteMs: s.WhiteMs,
		BlackMs: s.BlackMs,
	}
	if s.Result != ResultActive {
		out.Ended = true
		out.Result = s.Result
		out.Reason = s.Reason
		out.WinnerID = s.WinnerID
		out.Flagged = s.Reason == EndTimeout
	}
	return out
}

func opponent(c Color) Color {
	if c == White {
		return Black
	}
	return White
}

func wonBy(c Color) Result {
	if c == White {
		return ResultWhiteWon
	}
	return ResultBlackWon
}
