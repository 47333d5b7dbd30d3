package timer

import (
	"sort"
	"time"
)

type ID uint64

type entry struct {
	id        ID
	deadline  time.Time
	remaining time.Duration
	running   bool
	fn        func()
}

// Scheduler holds one-shot timers. It never fires on its own: the owner calls
// Fire with the current time, so callbacks always run on the caller's goroutine.
type Scheduler struct {
	now    func() time.Time
	nextID ID
	live   map[ID]*entry
}

func New(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now, live: make(map[ID]*entry)}
}

// Schedule arms fn to fire once d has elapsed. A non-positive d fires on the next Fire call.
func (s *Scheduler) Schedule(d time.Duration, fn func()) ID {
	if d < 0 {
		d = 0
	}
	s.nextID++
	id := s.nextID
	s.live[id] = &entry{id: id, deadline: s.now().Add(d), running: true, fn: fn}
	return id
}

// ScheduleStopped registers a frozen timer that only starts counting after Restart.
func (s *Scheduler) ScheduleStopped(d time.Duration, fn func()) ID {
	if d < 0 {
		d = 0
	}
	s.nextID++
	id := s.nextID
	s.live[id] = &entry{id: id, remaining: d, fn: fn}
	return id
}

// Fire runs every timer due at now, ordered by deadline then by id. Each timer
// leaves the live set before its callback runs. Timers scheduled by a callback
// are considered in the same pass when already due.
func (s *Scheduler) Fire(now time.Time) int {
	fired := 0
	for {
		due := s.due(now)
		if len(due) == 0 {
			return fired
		}
		for _, e := range due {
			if cur, ok := s.live[e.id]; !ok || cur != e || !cur.running {
				continue
			}
			delete(s.live, e.id)
			fired++
			if e.fn != nil {
				e.fn()
			}
		}
	}
}

func (s *Scheduler) due(now time.Time) []*entry {
	var out []*entry
	for _, e := range s.live {
		if e.running && !e.deadline.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].deadline.Equal(out[j].deadline) {
			return out[i].deadline.Before(out[j].deadline)
		}
		return out[i].id < out[j].id
	})
	return out
}

// Stop freezes a running timer and returns its remaining duration. It reports
// false when the timer is unknown or already stopped.
func (s *Scheduler) Stop(id ID) (time.Duration, bool) {
	e, ok := s.live[id]
	if !ok || !e.running {
		return 0, false
	}
	rem := e.deadline.Sub(s.now())
	if rem < 0 {
		rem = 0
	}
	e.remaining = rem
	e.running = false
	return rem, true
}

// Restart resumes a stopped timer from its frozen remaining duration, anchored at now.
func (s *Scheduler) Restart(id ID, now time.Time) (time.Duration, bool) {
	e, ok := s.live[id]
	if !ok || e.running {
		return 0, false
	}
	e.deadline = now.Add(e.remaining)
	e.running = true
	return e.remaining, true
}

func (s *Scheduler) Cancel(id ID) {
	delete(s.live, id)
}

func (s *Scheduler) StopAll() {
	for _, id := range s.ids() {
		s.Stop(id)
	}
}

func (s *Scheduler) RestartAll(now time.Time) {
	for _, id := range s.ids() {
		s.Restart(id, now)
	}
}

// Remaining reports the time left on a live timer, frozen or running.
func (s *Scheduler) Remaining(id ID) (time.Duration, bool) {
	e, ok := s.live[id]
	if !ok {
		return 0, false
	}
	if !e.running {
		return e.remaining, true
	}
	rem := e.deadline.Sub(s.now())
	if rem < 0 {
		rem = 0
	}
	return rem, true
}

func (s *Scheduler) Running(id ID) bool {
	e, ok := s.live[id]
	return ok && e.running
}

func (s *Scheduler) Len() int {
	return len(s.live)
}

func (s *Scheduler) ids() []ID {
	out := make([]ID, 0, len(s.live))
	for id := range s.live {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
