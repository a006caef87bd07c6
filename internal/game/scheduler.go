package game

import (
	"cmp"
	"slices"
	"time"
)

// EventKind names a deferred scene action.
type EventKind int

const (
	EventSpawn EventKind = iota // bring up a mole in a random hole
	EventHide                   // the current mole escapes
)

func (k EventKind) String() string {
	switch k {
	case EventSpawn:
		return "spawn"
	case EventHide:
		return "hide"
	default:
		return "unknown"
	}
}

type event struct {
	due  time.Time
	kind EventKind
	seq  uint64
}

// Scheduler holds timed events for the frame loop to drain. It replaces
// wall-clock timers so every state change happens on the loop goroutine.
type Scheduler struct {
	events []event
	seq    uint64
}

// Schedule queues kind to fire at due.
func (s *Scheduler) Schedule(due time.Time, kind EventKind) {
	s.seq++
	s.events = append(s.events, event{due: due, kind: kind, seq: s.seq})
}

// Cancel drops every pending event of kind and returns how many there were.
func (s *Scheduler) Cancel(kind EventKind) int {
	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e event) bool {
		return e.kind == kind
	})
	return before - len(s.events)
}

// Due removes and returns the events with due <= now, earliest first.
// Events due at the same instant keep their scheduling order.
func (s *Scheduler) Due(now time.Time) []EventKind {
	var fired []event
	s.events = slices.DeleteFunc(s.events, func(e event) bool {
		if e.due.After(now) {
			return false
		}
		fired = append(fired, e)
		return true
	})
	if len(fired) == 0 {
		return nil
	}
	slices.SortFunc(fired, func(a, b event) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	kinds := make([]EventKind, len(fired))
	for i, e := range fired {
		kinds[i] = e.kind
	}
	return kinds
}

// Pending reports whether an event of kind is queued.
func (s *Scheduler) Pending(kind EventKind) bool {
	return slices.ContainsFunc(s.events, func(e event) bool {
		return e.kind == kind
	})
}

// Len returns the number of queued events.
func (s *Scheduler) Len() int { return len(s.events) }

// Reset drops every event.
func (s *Scheduler) Reset() { s.events = s.events[:0] }
