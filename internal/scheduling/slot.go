package scheduling

import "fmt"

// Slot is a half-open [Start, End) time-of-day interval within a single day.
// Start < End is a precondition enforced at the request layer; a degenerate
// slot produces unspecified results from the conflict predicate.
type Slot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewSlot parses a slot from HH:MM start and end strings and validates ordering.
func NewSlot(start, end string) (Slot, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Slot{}, err
	}
	if s >= e {
		return Slot{}, fmt.Errorf("invalid slot: start %s must be before end %s", s, e)
	}
	return Slot{Start: s, End: e}, nil
}

// Duration returns the slot length in minutes.
func (s Slot) Duration() int {
	return int(s.End - s.Start)
}

func (s Slot) String() string {
	return fmt.Sprintf("[%s, %s)", s.Start, s.End)
}

// ConflictsWith reports whether the candidate slot s collides with an
// existing booked slot. The three clauses cover: the candidate starting
// inside the existing slot, the candidate ending inside it, and the
// candidate fully containing it.
//
// The comparisons are deliberately kept in this exact form rather than
// collapsed into the textbook half-open overlap test: the mixed strict and
// non-strict boundaries are load-bearing. An existing slot ending exactly at
// the candidate's start does not conflict (back-to-back bookings are legal),
// while one starting exactly at the candidate's start does.
func (s Slot) ConflictsWith(existing Slot) bool {
	cs, ce := s.Start, s.End
	es, ee := existing.Start, existing.End

	switch {
	case es <= cs && ee > cs:
		return true
	case es < ce && ee >= ce:
		return true
	case es >= cs && ee <= ce:
		return true
	}
	return false
}
