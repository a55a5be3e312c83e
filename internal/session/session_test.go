package session

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestSession(t *testing.T, tc string, clock *fakeClock) *Session {
	t.Helper()
	s, err := New(Params{
		ID:          "G1",
		TimeControl: tc,
		WhiteID:     "alice",
		WhiteConn:   "c-alice",
		BlackID:     "bob",
		BlackConn:   "c-bob",
		Now:         clock.now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewSessionClocks(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	w, b := s.Clocks()
	if w != 300_000 || b != 300_000 {
		t.Fatalf("expected 300000ms each, got %d/%d", w, b)
	}
	result, _, _ := s.State()
	if result != ResultActive {
		t.Fatalf("expected ACTIVE, got %s", result)
	}
}

func TestApplyMoveTurnAndParticipants(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	if _, ok := s.ApplyMove("bob", "e7e5"); ok {
		t.Fatalf("black must not move first")
	}
	if _, ok := s.ApplyMove("carol", "e2e4"); ok {
		t.Fatalf("non-participant accepted")
	}
	out, ok := s.ApplyMove("alice", "e2e4")
	if !ok {
		t.Fatalf("white opening move rejected")
	}
	if out.UCI != "e2e4" || out.SAN != "e4" {
		t.Fatalf("unexpected move record: %+v", out)
	}
	if _, ok := s.ApplyMove("alice", "d2d4"); ok {
		t.Fatalf("white moved twice in a row")
	}
}

func TestApplyMoveDeductsAndIncrements(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(t, "3+2", clock)

	clock.advance(1500 * time.Millisecond)
	out, ok := s.ApplyMove("alice", "e2e4")
	if !ok {
		t.Fatalf("move rejected")
	}
	// 180000 - 1500 + 2000
	if out.WhiteMs != 180_500 {
		t.Fatalf("white clock = %d, want 180500", out.WhiteMs)
	}
	if out.BlackMs != 180_000 {
		t.Fatalf("black clock must be untouched, got %d", out.BlackMs)
	}
}

func TestIllegalMoveLeavesClockUntouched(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(t, "5+0", clock)

	clock.advance(2 * time.Second)
	if _, ok := s.ApplyMove("alice", "e2e5"); ok {
		t.Fatalf("illegal move accepted")
	}
	w, _ := s.Clocks()
	if w != 300_000 {
		t.Fatalf("illegal move changed the clock: %d", w)
	}
	// the elapsed time still counts against the eventual legal move
	clock.advance(1 * time.Second)
	out, ok := s.ApplyMove("alice", "e2e4")
	if !ok {
		t.Fatalf("legal move rejected")
	}
	if out.WhiteMs != 297_000 {
		t.Fatalf("white clock = %d, want 297000", out.WhiteMs)
	}
}

func TestFlagFall(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(t, "1+0", clock)

	if _, ok := s.ApplyMove("alice", "e2e4"); !ok {
		t.Fatalf("opening move rejected")
	}
	clock.advance(61 * time.Second)
	out, ok := s.ApplyMove("bob", "e7e5")
	if !ok {
		t.Fatalf("flag fall must still report an outcome")
	}
	if !out.Flagged || !out.Ended {
		t.Fatalf("expected flagged terminal outcome: %+v", out)
	}
	if out.Result != ResultWhiteWon || out.Reason != EndTimeout || out.WinnerID != "alice" {
		t.Fatalf("unexpected terminal state: %+v", out)
	}
	if out.BlackMs != -1000 {
		t.Fatalf("negative balance must be reported as-is, got %d", out.BlackMs)
	}
	if s.MoveCount() != 1 {
		t.Fatalf("flagged move must not be applied, moves=%d", s.MoveCount())
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	moves := []struct{ user, uci string }{
		{"alice", "f2f3"}, {"bob", "e7e5"}, {"alice", "g2g4"},
	}
	for _, m := range moves {
		if _, ok := s.ApplyMove(m.user, m.uci); !ok {
			t.Fatalf("move %s rejected", m.uci)
		}
	}
	out, ok := s.ApplyMove("bob", "d8h4")
	if !ok {
		t.Fatalf("mating move rejected")
	}
	if !out.Ended || out.Result != ResultBlackWon || out.Reason != EndCheckmate || out.WinnerID != "bob" {
		t.Fatalf("unexpected mate outcome: %+v", out)
	}
	if out.Flagged {
		t.Fatalf("checkmate must not be reported as a flag")
	}
}

func TestTerminalSessionIsImmutable(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	if !s.Resign("bob") {
		t.Fatalf("resign rejected")
	}
	result, reason, winner := s.State()
	if result != ResultWhiteWon || reason != EndResignation || winner != "alice" {
		t.Fatalf("unexpected state after resign: %s %s %s", result, reason, winner)
	}
	if _, ok := s.ApplyMove("alice", "e2e4"); ok {
		t.Fatalf("move accepted on terminal game")
	}
	if s.Resign("alice") {
		t.Fatalf("resign accepted on terminal game")
	}
	if s.OfferDraw("alice") {
		t.Fatalf("draw offer accepted on terminal game")
	}
	if s.Abort("alice") {
		t.Fatalf("abort accepted on terminal game")
	}
}

func TestDrawOfferFlow(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())

	if _, ok := s.RespondDraw("bob", true); ok {
		t.Fatalf("respond without a pending offer accepted")
	}
	if !s.OfferDraw("alice") {
		t.Fatalf("offer rejected")
	}
	if _, ok := s.RespondDraw("alice", true); ok {
		t.Fatalf("offerer accepted own offer")
	}
	accepted, ok := s.RespondDraw("bob", false)
	if !ok || accepted {
		t.Fatalf("decline mishandled: accepted=%v ok=%v", accepted, ok)
	}
	if s.DrawOfferBy() != "" {
		t.Fatalf("decline must clear the pending offer")
	}

	if !s.OfferDraw("bob") {
		t.Fatalf("re-offer rejected")
	}
	accepted, ok = s.RespondDraw("alice", true)
	if !ok || !accepted {
		t.Fatalf("accept mishandled: accepted=%v ok=%v", accepted, ok)
	}
	result, reason, _ := s.State()
	if result != ResultDraw || reason != EndDrawAgreed {
		t.Fatalf("unexpected draw state: %s %s", result, reason)
	}
}

func TestDrawOfferClearedByMove(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	if !s.OfferDraw("alice") {
		t.Fatalf("offer rejected")
	}
	if _, ok := s.ApplyMove("alice", "e2e4"); !ok {
		t.Fatalf("move rejected")
	}
	if s.DrawOfferBy() != "" {
		t.Fatalf("move must clear the pending offer")
	}
}

func TestAbortWindows(t *testing.T) {
	s := newTestSession(t, "5+0", newFakeClock())
	// white may abort before moving
	if !s.Abort("alice") {
		t.Fatalf("white abort before first move rejected")
	}
	result, reason, winner := s.State()
	if result != ResultAborted || reason != EndAborted || winner != "" {
		t.Fatalf("unexpected abort state: %s %s %q", result, reason, winner)
	}

	s = newTestSession(t, "5+0", newFakeClock())
	if _, ok := s.ApplyMove("alice", "e2e4"); !ok {
		t.Fatalf("move rejected")
	}
	if s.Abort("alice") {
		t.Fatalf("white abort after moving accepted")
	}
	// black may still abort with one move played
	if !s.Abort("bob") {
		t.Fatalf("black abort with one move rejected")
	}

	s = newTestSession(t, "5+0", newFakeClock())
	s.ApplyMove("alice", "e2e4")
	s.ApplyMove("bob", "e7e5")
	if s.Abort("bob") {
		t.Fatalf("black abort after own move accepted")
	}
}

func TestJoinStartsPrivateGame(t *testing.T) {
	clock := newFakeClock()
	s, err := New(Params{
		ID:          "G2",
		TimeControl: "5+0",
		WhiteID:     "alice",
		WhiteConn:   "c-alice",
		Now:         clock.now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// moves are rejected while the second seat is empty
	if _, ok := s.ApplyMove("alice", "e2e4"); ok {
		t.Fatalf("move accepted without an opponent")
	}
	out, ok := s.Join("bob", "c-bob")
	if !ok || !out.Started {
		t.Fatalf("join mishandled: %+v ok=%v", out, ok)
	}
	// the same user joining again is a reconnect
	out, ok = s.Join("bob", "c-bob2")
	if !ok || !out.Reconnected || out.Started {
		t.Fatalf("rejoin mishandled: %+v ok=%v", out, ok)
	}
	if _, ok := s.Join("carol", "c-carol"); ok {
		t.Fatalf("third player accepted")
	}
	if _, ok := s.ApplyMove("alice", "e2e4"); !ok {
		t.Fatalf("move rejected after join")
	}
}
