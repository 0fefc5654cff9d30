// Package scheduling decides whether an appointment slot can be booked for a
// doctor without double-booking. It is a pure decision layer: callers supply
// a SlotReader over already-persisted appointments and the checker evaluates
// the conflict predicate in memory.
//
// A plain check-then-insert sequence built on this package races: two
// concurrent bookings can both observe an empty slot before either persists.
// Callers that need the booking invariant to hold under concurrency must run
// Check and the subsequent write under storage-level serialization, e.g. the
// advisory-lock transaction the postgres repository provides.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Query identifies the slot being evaluated. Conflict checks are scoped to a
// single (organization, doctor, date) triple; appointments in other
// organizations or on other dates are never consulted.
type Query struct {
	OrganizationID uuid.UUID
	DoctorID       uuid.UUID
	Date           time.Time
	Slot           Slot

	// ExcludeID skips one appointment by id, so an update does not
	// conflict with the record being updated.
	ExcludeID *uuid.UUID
}

// BookedSlot is the minimal projection of an existing appointment needed to
// evaluate a conflict.
type BookedSlot struct {
	ID        uuid.UUID
	Slot      Slot
	Cancelled bool
}

// SlotReader fetches booked slots matching the query scope. Implementations
// must apply the organization, doctor, date, and ExcludeID filters; the
// checker applies only the interval predicate.
type SlotReader interface {
	BookedSlots(ctx context.Context, q Query) ([]BookedSlot, error)
}

// Options tunes checker behavior.
type Options struct {
	// IgnoreCancelled frees slots held by cancelled appointments. The
	// default (false) matches the historical behavior where a cancelled
	// appointment still blocks re-booking; flip this once product
	// confirms cancelled slots should be reusable.
	IgnoreCancelled bool
}

// Result is the outcome of a conflict check. A found conflict is a normal
// value, not an error; only reader failures surface as errors.
type Result struct {
	Conflict      bool
	ConflictingID uuid.UUID
}

// Checker evaluates slot conflicts against a snapshot of booked slots.
type Checker struct {
	reader SlotReader
	opts   Options
}

func NewChecker(reader SlotReader, opts Options) *Checker {
	return &Checker{reader: reader, opts: opts}
}

// Check reports whether the queried slot collides with any existing booking
// for the same organization, doctor, and date.
func (c *Checker) Check(ctx context.Context, q Query) (Result, error) {
	booked, err := c.reader.BookedSlots(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read booked slots: %w", err)
	}

	for _, b := range booked {
		if c.opts.IgnoreCancelled && b.Cancelled {
			continue
		}
		if q.Slot.ConflictsWith(b.Slot) {
			return Result{Conflict: true, ConflictingID: b.ID}, nil
		}
	}
	return Result{}, nil
}
