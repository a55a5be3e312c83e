package matchq

import "testing"

type fakePresence struct{ offline map[string]bool }

func (p *fakePresence) IsOnline(userID string) bool { return !p.offline[userID] }

func newTestQueue() (*Queue, *fakePresence) {
	p := &fakePresence{offline: make(map[string]bool)}
	return New(p), p
}

func TestRequestPairsCompatiblePlayers(t *testing.T) {
	q, _ := newTestQueue()

	if pair := q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1200, Tolerance: 400}); pair != nil {
		t.Fatalf("first request must enqueue, got %+v", pair)
	}
	if q.Pending("5+0") != 1 {
		t.Fatalf("pending = %d", q.Pending("5+0"))
	}

	pair := q.Request(Ticket{ConnID: "c2", UserID: "bob", TimeControl: "5+0", Rating: 1300, Tolerance: 400})
	if pair == nil {
		t.Fatalf("expected a pair")
	}
	// the earlier-queued player takes white
	if pair.White.UserID != "alice" || pair.Black.UserID != "bob" {
		t.Fatalf("wrong colors: white=%s black=%s", pair.White.UserID, pair.Black.UserID)
	}
	if q.Pending("5+0") != 0 {
		t.Fatalf("bucket must be empty after a match, pending=%d", q.Pending("5+0"))
	}
}

func TestToleranceIsTwoSided(t *testing.T) {
	q, _ := newTestQueue()

	// alice accepts a 500 gap but bob only 200: the 400 gap fails bob's side
	q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1000, Tolerance: 500})
	if pair := q.Request(Ticket{ConnID: "c2", UserID: "bob", TimeControl: "5+0", Rating: 1400, Tolerance: 200}); pair != nil {
		t.Fatalf("pair formed despite requester tolerance, %+v", pair)
	}
	if q.Pending("5+0") != 2 {
		t.Fatalf("both tickets must wait, pending=%d", q.Pending("5+0"))
	}

	// carol is within everyone's reach and matches the oldest compatible ticket
	pair := q.Request(Ticket{ConnID: "c3", UserID: "carol", TimeControl: "5+0", Rating: 1150, Tolerance: 400})
	if pair == nil || pair.White.UserID != "alice" {
		t.Fatalf("expected carol to match alice, got %+v", pair)
	}
}

func TestBucketsAreIsolatedByTimeControl(t *testing.T) {
	q, _ := newTestQueue()
	q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1200, Tolerance: 400})
	if pair := q.Request(Ticket{ConnID: "c2", UserID: "bob", TimeControl: "3+2", Rating: 1200, Tolerance: 400}); pair != nil {
		t.Fatalf("matched across time controls: %+v", pair)
	}
}

func TestRequeueReplacesOwnTicket(t *testing.T) {
	q, _ := newTestQueue()
	q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1200, Tolerance: 100})
	// a re-request must supersede, not self-match or double-queue
	if pair := q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1200, Tolerance: 500}); pair != nil {
		t.Fatalf("self-match: %+v", pair)
	}
	if q.Pending("5+0") != 1 {
		t.Fatalf("pending = %d, want 1", q.Pending("5+0"))
	}
}

func TestOfflineTicketsArePruned(t *testing.T) {
	q, p := newTestQueue()
	q.Request(Ticket{ConnID: "c1", UserID: "ghost", TimeControl: "5+0", Rating: 1200, Tolerance: 400})
	p.offline["ghost"] = true

	if pair := q.Request(Ticket{ConnID: "c2", UserID: "bob", TimeControl: "5+0", Rating: 1200, Tolerance: 400}); pair != nil {
		t.Fatalf("matched an offline player: %+v", pair)
	}
	// the stale ticket is gone, only bob waits
	if q.Pending("5+0") != 1 {
		t.Fatalf("pending = %d, want 1", q.Pending("5+0"))
	}
}

func TestCancelUser(t *testing.T) {
	q, _ := newTestQueue()
	q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "5+0", Rating: 1200, Tolerance: 400})
	q.Request(Ticket{ConnID: "c1", UserID: "alice", TimeControl: "3+2", Rating: 1200, Tolerance: 400})
	q.CancelUser("alice")
	if q.Pending("5+0") != 0 || q.Pending("3+2") != 0 {
		t.Fatalf("tickets survived cancel: %d/%d", q.Pending("5+0"), q.Pending("3+2"))
	}
}
