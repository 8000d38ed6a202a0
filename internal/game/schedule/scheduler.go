// Package schedule provides one-shot delayed tasks driven by a virtual clock.
//
// Tasks never run on their own: the owner advances the clock once per
// simulation step and every task whose deadline has passed runs in deadline
// order. Each task is guarded by a Token that can be cancelled any number of times.
package schedule

import "time"

// Token identifies one scheduled task and allows it to be cancelled.
type Token struct {
	cancelled bool
	fired     bool
}

// Cancel prevents the task from running. Safe to call multiple times and on nil.
//
// Postcondition: the task's callback will not be invoked after Cancel returns.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool { return t != nil && t.cancelled }

// Pending reports whether the task is still waiting to run.
func (t *Token) Pending() bool { return t != nil && !t.cancelled && !t.fired }

type task struct {
	token   *Token
	readyAt time.Time
	seq     uint64
	fn      func(at time.Time)
}

// Scheduler runs delayed callbacks against a virtual clock.
//
// Concurrency: Scheduler is not safe for concurrent use. All calls, including
// calls made from inside callbacks, must come from the simulation goroutine.
type Scheduler struct {
	now     time.Time
	seq     uint64
	pending []*task
}

// NewScheduler creates a Scheduler whose clock starts at start.
//
// Postcondition: Now() == start; no tasks are pending.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the current virtual time. Inside a callback this is the task's deadline.
func (s *Scheduler) Now() time.Time { return s.now }

// After schedules fn to run once delay has elapsed on the virtual clock.
// Negative delays are treated as zero.
//
// Precondition: fn must not be nil.
// Postcondition: Returns a pending Token; fn receives its scheduled deadline.
func (s *Scheduler) After(delay time.Duration, fn func(at time.Time)) *Token {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	tok := &Token{}
	s.pending = append(s.pending, &task{
		token:   tok,
		readyAt: s.now.Add(delay),
		seq:     s.seq,
		fn:      fn,
	})
	return tok
}

// Advance moves the clock to now and runs every due task in deadline order,
// ties broken by scheduling order. Tasks scheduled by a callback run in the
// same call when their deadline is not after now. Cancelled tasks are dropped.
// Moving the clock backwards is a no-op.
//
// Postcondition: Now() == max(previous Now(), now); no pending task is due.
// Returns the number of callbacks invoked.
func (s *Scheduler) Advance(now time.Time) int {
	if now.Before(s.now) {
		return 0
	}
	ran := 0
	for {
		idx := s.nextDue(now)
		if idx < 0 {
			break
		}
		t := s.pending[idx]
		s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
		if t.token.cancelled {
			continue
		}
		s.now = t.readyAt
		t.token.fired = true
		t.fn(t.readyAt)
		ran++
	}
	s.now = now
	s.compact()
	return ran
}

// Len returns the number of tasks that are neither fired nor cancelled.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.pending {
		if !t.token.cancelled {
			n++
		}
	}
	return n
}

// nextDue returns the index of the earliest task due at or before now, or -1.
func (s *Scheduler) nextDue(now time.Time) int {
	best := -1
	for i, t := range s.pending {
		if t.readyAt.After(now) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := s.pending[best]
		if t.readyAt.Before(b.readyAt) || (t.readyAt.Equal(b.readyAt) && t.seq < b.seq) {
			best = i
		}
	}
	return best
}

// compact drops cancelled tasks that have not reached their deadline.
func (s *Scheduler) compact() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.token.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = live
}
