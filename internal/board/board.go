package board

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// ErrIllegalMove covers malformed input and moves the rules engine rejects.
var ErrIllegalMove = errors.New("illegal move")

// Position wraps the rules engine for a single game. It is not safe
// for concurrent use; the owning session serializes access.
type Position struct {
	game *nchess.Game
}

// New builds a position from a FEN string. Empty or "startpos" means
// the standard starting position.
func New(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return &Position{game: nchess.NewGame()}, nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return &Position{game: nchess.NewGame(option)}, nil
}

// ApplyUCI validates and applies a move given as a from+to square pair,
// optionally suffixed with a promotion letter. A bare pair that is only
// legal as a promotion defaults to queen. Returns the SAN and the
// normalized UCI of the applied move.
func (p *Position) ApplyUCI(move string) (san, uci string, err error) {
	raw := strings.ToLower(strings.TrimSpace(move))
	if len(raw) != 4 && len(raw) != 5 {
		return "", "", ErrIllegalMove
	}
	if san, err := p.tryUCI(raw); err == nil {
		return san, raw, nil
	}
	// a bare pair decodes without a promotion piece, which the engine
	// rejects at apply time; such a pair is only legal as a promotion,
	// so default it to queen
	if len(raw) == 4 {
		if san, err := p.tryUCI(raw + "q"); err == nil {
			return san, raw + "q", nil
		}
	}
	return "", "", ErrIllegalMove
}

func (p *Position) tryUCI(raw string) (string, error) {
	pos := p.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, raw)
	if err != nil {
		return "", ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := p.game.Move(mv, nil); err != nil {
		return "", ErrIllegalMove
	}
	return san, nil
}

// WhiteToMove reports whose turn it is.
func (p *Position) WhiteToMove() bool {
	return p.game.Position().Turn() == nchess.White
}

// FEN returns the canonical notation of the current position.
func (p *Position) FEN() string { return p.game.FEN() }

// Terminal reports whether the rules engine has declared an outcome.
func (p *Position) Terminal() bool { return p.game.Outcome() != nchess.NoOutcome }

func (p *Position) Checkmate() bool { return p.game.Method() == nchess.Checkmate }

func (p *Position) Stalemate() bool { return p.game.Method() == nchess.Stalemate }

// Method returns the engine's termination method as a lowercase token,
// or "" while the game is still open.
func (p *Position) Method() string {
	if p.game.Outcome() == nchess.NoOutcome {
		return ""
	}
	return strings.ToLower(p.game.Method().String())
}
