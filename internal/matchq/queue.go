package matchq

import (
	"strings"
	"sync"
	"time"

	"github.com/park285/chess960-arena/internal/obslog"
	"go.uber.org/zap"
)

// Presence reports whether a user still has a live connection.
// Tickets whose owner went offline are pruned at match-scan time.
type Presence interface {
	IsOnline(userID string) bool
}

// Ticket is one pending matchmaking request.
type Ticket struct {
	ConnID      string
	UserID      string
	TimeControl string
	Rating      int
	Tolerance   int
	EnqueuedAt  time.Time
}

// Pair is a successful match. White is the ticket that was already
// waiting, Black the requester that completed the pair.
type Pair struct {
	White Ticket
	Black Ticket
}

// Queue holds pending tickets partitioned by exact time-control
// string. Distinct time controls never cross-match. One mutex covers
// scan-remove-or-enqueue so two requesters cannot claim the same
// waiting ticket.
type Queue struct {
	mu       sync.Mutex
	presence Presence
	buckets  map[string][]Ticket
}

func New(presence Presence) *Queue {
	return &Queue{presence: presence, buckets: make(map[string][]Ticket)}
}

// Request pairs the caller with the first compatible waiting ticket,
// or enqueues it and returns nil. Any prior ticket from the same user
// in this bucket is removed either way. Compatibility requires the
// rating gap to satisfy both sides' declared tolerance.
func (q *Queue) Request(t Ticket) *Pair {
	t.TimeControl = strings.TrimSpace(t.TimeControl)
	if t.UserID == "" || t.TimeControl == "" {
		return nil
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	bucket := q.buckets[t.TimeControl]
	kept := bucket[:0]
	var matched *Ticket
	for i := range bucket {
		cand := bucket[i]
		if cand.UserID == t.UserID {
			// stale ticket from a re-queue, superseded
			continue
		}
		if matched != nil {
			kept = append(kept, cand)
			continue
		}
		if q.presence != nil && !q.presence.IsOnline(cand.UserID) {
			obslog.L().Debug("matchq_prune_stale",
				zap.String("user_id", cand.UserID),
				zap.String("time_control", t.TimeControl),
			)
			continue
		}
		gap := cand.Rating - t.Rating
		if gap < 0 {
			gap = -gap
		}
		if gap <= cand.Tolerance && gap <= t.Tolerance {
			c := cand
			matched = &c
			continue
		}
		kept = append(kept, cand)
	}

	if matched != nil {
		q.store(t.TimeControl, kept)
		return &Pair{White: *matched, Black: t}
	}
	q.store(t.TimeControl, append(kept, t))
	return nil
}

// CancelUser drops every ticket owned by the user, across all buckets.
// Called when the owning connection goes away.
func (q *Queue) CancelUser(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for tc, bucket := range q.buckets {
		kept := bucket[:0]
		for _, cand := range bucket {
			if cand.UserID != userID {
				kept = append(kept, cand)
			}
		}
		q.store(tc, kept)
	}
}

// Pending returns the number of waiting tickets in one bucket.
func (q *Queue) Pending(timeControl string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buckets[strings.TrimSpace(timeControl)])
}

func (q *Queue) store(tc string, bucket []Ticket) {
	if len(bucket) == 0 {
		delete(q.buckets, tc)
		return
	}
	q.buckets[tc] = bucket
}
