package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	a, err := OpenArchive(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchiveSaveLoad(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	snap := &Snapshot{
		ID:          "ABC123",
		TimeControl: "3+2",
		WhiteID:     "alice",
		BlackID:     "bob",
		InitialFEN:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		FEN:         "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		MovesUCI:    []string{"e2e4"},
		MovesSAN:    []string{"e4"},
		WhiteMs:     181_000,
		BlackMs:     180_000,
		Result:      ResultActive,
		CreatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := a.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := a.Load(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatalf("Load returned nil for a saved snapshot")
	}
	if got.ID != snap.ID || got.FEN != snap.FEN || got.WhiteMs != snap.WhiteMs {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if len(got.MovesUCI) != 1 || got.MovesUCI[0] != "e2e4" {
		t.Fatalf("moves lost in roundtrip: %+v", got.MovesUCI)
	}
}

func TestArchiveLoadUnknownID(t *testing.T) {
	a := newTestArchive(t)
	got, err := a.Load(context.Background(), "NOPE42")
	if err != nil || got != nil {
		t.Fatalf("want nil,nil for unknown id, got %+v, %v", got, err)
	}
}

func TestArchiveNilReceiverIsSafe(t *testing.T) {
	var a *Archive
	if err := a.Save(context.Background(), &Snapshot{ID: "X"}); err != nil {
		t.Fatalf("nil Save: %v", err)
	}
	if got, err := a.Load(context.Background(), "X"); err != nil || got != nil {
		t.Fatalf("nil Load: %+v, %v", got, err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
