// Package session sequences searches issued by the same browser session so a
// slow, superseded request can never overwrite the result of a newer one.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrSuperseded is returned when a newer request was issued for the same
// session while this one was still in flight.
var ErrSuperseded = errors.New("request superseded by a newer search")

type sequence struct {
	latest atomic.Uint64
	// changed is closed and replaced whenever a newer request begins.
	changed chan struct{}
}

// Tracker hands out request ids and remembers the newest one per session.
// Ids come from one tracker-wide counter, so a session that was evicted and
// came back never reuses an id.
type Tracker struct {
	mu       sync.Mutex
	next     uint64
	seqs     *expirable.LRU[string, *sequence]
	debounce time.Duration
}

// NewTracker remembers up to maxSessions sessions, forgetting any that stay
// idle for longer than idle.
func NewTracker(maxSessions int, idle, debounce time.Duration) *Tracker {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &Tracker{
		seqs:     expirable.NewLRU[string, *sequence](maxSessions, nil, idle),
		debounce: debounce,
	}
}

// Begin registers a new request for sessionID and returns its ticket. An
// empty sessionID yields an anonymous ticket that is never superseded.
func (t *Tracker) Begin(sessionID string) Ticket {
	if t == nil || sessionID == "" {
		return Ticket{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seq, ok := t.seqs.Get(sessionID)
	if ok {
		close(seq.changed)
	} else {
		seq = &sequence{}
	}
	seq.changed = make(chan struct{})
	// Re-adding refreshes the idle TTL.
	t.seqs.Add(sessionID, seq)

	t.next++
	seq.latest.Store(t.next)

	return Ticket{
		tracker:  t,
		seq:      seq,
		changed:  seq.changed,
		session:  sessionID,
		id:       t.next,
		debounce: t.debounce,
	}
}

// Ticket identifies one request within a session.
type Ticket struct {
	tracker  *Tracker
	seq      *sequence
	changed  <-chan struct{}
	session  string
	id       uint64
	debounce time.Duration
}

// ID is the request id; 0 for anonymous tickets.
func (t Ticket) ID() uint64 { return t.id }

// Session is the session the ticket belongs to.
func (t Ticket) Session() string { return t.session }

// Latest reports whether no newer request has been issued for the session.
// A ticket whose session was evicted and started again is stale.
func (t Ticket) Latest() bool {
	if t.seq == nil {
		return true
	}
	if live, ok := t.tracker.seqs.Peek(t.session); ok && live != t.seq {
		return false
	}
	return t.seq.latest.Load() == t.id
}

// Settle waits out the debounce quiet period. It returns ErrSuperseded once a
// newer request for the session begins, or ctx.Err() if ctx ends first.
func (t Ticket) Settle(ctx context.Context) error {
	if t.seq == nil || t.debounce <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(t.debounce)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.changed:
		return ErrSuperseded
	case <-timer.C:
	}

	if !t.Latest() {
		return ErrSuperseded
	}
	return nil
}
