package board

import (
	"errors"
	"strings"
	"testing"
)

func TestNewStartposAndMove(t *testing.T) {
	p, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.WhiteToMove() {
		t.Fatalf("expected white to move at start")
	}
	san, uci, err := p.ApplyUCI("e2e4")
	if err != nil {
		t.Fatalf("ApplyUCI e2e4: %v", err)
	}
	if san != "e4" || uci != "e2e4" {
		t.Fatalf("unexpected notation: san=%q uci=%q", san, uci)
	}
	if p.WhiteToMove() {
		t.Fatalf("expected black to move after e4")
	}
	if p.Terminal() {
		t.Fatalf("position must not be terminal after one move")
	}
}

func TestApplyUCIRejectsIllegalAndMalformed(t *testing.T) {
	p, err := New("startpos")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := p.FEN()
	for _, move := range []string{"e2e5", "e7e5", "zz", "e2", "e2e4e6", ""} {
		if _, _, err := p.ApplyUCI(move); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("move %q: want ErrIllegalMove, got %v", move, err)
		}
	}
	if p.FEN() != before {
		t.Fatalf("rejected moves must not change the position")
	}
}

func TestApplyUCIPromotionDefaultsToQueen(t *testing.T) {
	const promoFEN = "8/P7/8/8/8/8/8/k6K w - - 0 1"

	p, err := New(promoFEN)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	san, uci, err := p.ApplyUCI("a7a8")
	if err != nil {
		t.Fatalf("ApplyUCI a7a8: %v", err)
	}
	if uci != "a7a8q" {
		t.Fatalf("expected queen promotion, got uci=%q", uci)
	}
	if !strings.HasPrefix(san, "a8=Q") {
		t.Fatalf("expected SAN a8=Q..., got %q", san)
	}

	// an explicit promotion letter is honored as given
	p, err = New(promoFEN)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	san, uci, err = p.ApplyUCI("a7a8n")
	if err != nil {
		t.Fatalf("ApplyUCI a7a8n: %v", err)
	}
	if uci != "a7a8n" || !strings.HasPrefix(san, "a8=N") {
		t.Fatalf("underpromotion mishandled: san=%q uci=%q", san, uci)
	}
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	p, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, move := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, _, err := p.ApplyUCI(move); err != nil {
			t.Fatalf("ApplyUCI %s: %v", move, err)
		}
	}
	if !p.Terminal() || !p.Checkmate() {
		t.Fatalf("expected checkmate, terminal=%v method=%s", p.Terminal(), p.Method())
	}
}

func TestQueenMoveIntoStalemate(t *testing.T) {
	p, err := New("8/8/8/8/1Q6/8/2K5/k7 w - - 0 1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := p.ApplyUCI("b4b3"); err != nil {
		t.Fatalf("ApplyUCI b4b3: %v", err)
	}
	if !p.Terminal() || !p.Stalemate() {
		t.Fatalf("expected stalemate, terminal=%v method=%s", p.Terminal(), p.Method())
	}
}
