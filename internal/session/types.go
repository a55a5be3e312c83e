package session

// Color identifies a chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Result is the lifecycle state of a session. Everything but
// ResultActive is terminal and immutable once set.
type Result string

const (
	ResultActive   Result = "ACTIVE"
	ResultWhiteWon Result = "WHITE_WON"
	ResultBlackWon Result = "BLACK_WON"
	ResultDraw     Result = "DRAW"
	ResultAborted  Result = "ABORTED"
)

// EndReason records how a terminal result came about.
type EndReason string

const (
	EndNone        EndReason = ""
	EndCheckmate   EndReason = "checkmate"
	EndResignation EndReason = "resignation"
	EndTimeout     EndReason = "timeout"
	EndStalemate   EndReason = "stalemate"
	EndDrawAgreed  EndReason = "draw_agreed"
	// EndDrawRule covers forced rule draws declared by the rules
	// engine (insufficient material, seventy-five moves, repetition).
	EndDrawRule EndReason = "draw_rule"
	EndAborted  EndReason = "aborted"
)

// MoveOutcome describes the observable effect of an accepted move
// attempt: either an applied move, or a flag-fall that ended the game
// without the move being applied.
type MoveOutcome struct {
	UCI      string
	SAN      string
	FEN      string
	WhiteMs  int64
	BlackMs  int64
	Flagged  bool
	Ended    bool
	Result   Result
	Reason   EndReason
	WinnerID string
}

// JoinOutcome distinguishes the absent-to-present transition that
// starts a game from a reconnect of an existing participant.
type JoinOutcome struct {
	Started     bool
	Reconnected bool
}
