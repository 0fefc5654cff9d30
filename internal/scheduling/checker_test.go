package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader applies the same scope filters the postgres repository applies:
// organization, doctor, date, and the optional id exclusion.
type fakeReader struct {
	rows []fakeRow
	err  error
}

type fakeRow struct {
	id        uuid.UUID
	orgID     uuid.UUID
	docID     uuid.UUID
	date      time.Time
	slot      Slot
	cancelled bool
}

func (r *fakeReader) BookedSlots(_ context.Context, q Query) ([]BookedSlot, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []BookedSlot
	for _, row := range r.rows {
		if row.orgID != q.OrganizationID || row.docID != q.DoctorID || !row.date.Equal(q.Date) {
			continue
		}
		if q.ExcludeID != nil && row.id == *q.ExcludeID {
			continue
		}
		out = append(out, BookedSlot{ID: row.id, Slot: row.slot, Cancelled: row.cancelled})
	}
	return out, nil
}

var (
	orgA = uuid.New()
	orgB = uuid.New()
	docA = uuid.New()
	docB = uuid.New()

	dayOne = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dayTwo = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
)

func slot(start, end string) Slot {
	return Slot{Start: MustParseTimeOfDay(start), End: MustParseTimeOfDay(end)}
}

func query(s Slot) Query {
	return Query{OrganizationID: orgA, DoctorID: docA, Date: dayOne, Slot: s}
}

func TestCheckEmptyCalendar(t *testing.T) {
	checker := NewChecker(&fakeReader{}, Options{})

	res, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckExactDuplicate(t *testing.T) {
	existing := uuid.New()
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: existing, orgID: orgA, docID: docA, date: dayOne, slot: slot("10:00", "10:30")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.True(t, res.Conflict)
	assert.Equal(t, existing, res.ConflictingID)
}

func TestCheckBackToBack(t *testing.T) {
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docA, date: dayOne, slot: slot("09:00", "10:00")},
	}}, Options{})

	// Candidate starts exactly when the existing booking ends.
	res, err := checker.Check(context.Background(), query(slot("10:00", "11:00")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)

	// And the mirror: candidate ends exactly when the existing one starts.
	res, err = checker.Check(context.Background(), query(slot("08:00", "09:00")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckOverlapAtStart(t *testing.T) {
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docA, date: dayOne, slot: slot("09:00", "10:00")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("09:30", "10:30")))
	require.NoError(t, err)
	assert.True(t, res.Conflict)
}

func TestCheckContainment(t *testing.T) {
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docA, date: dayOne, slot: slot("09:00", "12:00")},
	}}, Options{})

	// Candidate inside existing.
	res, err := checker.Check(context.Background(), query(slot("10:00", "11:00")))
	require.NoError(t, err)
	assert.True(t, res.Conflict)

	// Candidate containing existing.
	res, err = checker.Check(context.Background(), query(slot("08:00", "13:00")))
	require.NoError(t, err)
	assert.True(t, res.Conflict)
}

func TestCheckDifferentDoctor(t *testing.T) {
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docB, date: dayOne, slot: slot("10:00", "10:30")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckDifferentOrganization(t *testing.T) {
	// Same doctor id reused across tenants must never cross-conflict.
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgB, docID: docA, date: dayOne, slot: slot("10:00", "10:30")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckDifferentDate(t *testing.T) {
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docA, date: dayTwo, slot: slot("10:00", "10:30")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckExcludesSelfOnUpdate(t *testing.T) {
	self := uuid.New()
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: self, orgID: orgA, docID: docA, date: dayOne, slot: slot("09:00", "10:00")},
	}}, Options{})

	q := query(slot("09:00", "10:00"))
	q.ExcludeID = &self

	res, err := checker.Check(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckCancelledStillBlocksByDefault(t *testing.T) {
	cancelled := uuid.New()
	rows := []fakeRow{
		{id: cancelled, orgID: orgA, docID: docA, date: dayOne, slot: slot("10:00", "10:30"), cancelled: true},
	}

	res, err := NewChecker(&fakeReader{rows: rows}, Options{}).
		Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.True(t, res.Conflict)
	assert.Equal(t, cancelled, res.ConflictingID)

	res, err = NewChecker(&fakeReader{rows: rows}, Options{IgnoreCancelled: true}).
		Check(context.Background(), query(slot("10:00", "10:30")))
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestCheckPropagatesReaderError(t *testing.T) {
	readErr := errors.New("connection reset")
	checker := NewChecker(&fakeReader{err: readErr}, Options{})

	_, err := checker.Check(context.Background(), query(slot("10:00", "10:30")))
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestCheckBookingScenario(t *testing.T) {
	// Doctor's morning: one booking at [09:00, 09:30).
	checker := NewChecker(&fakeReader{rows: []fakeRow{
		{id: uuid.New(), orgID: orgA, docID: docA, date: dayOne, slot: slot("09:00", "09:30")},
	}}, Options{})

	res, err := checker.Check(context.Background(), query(slot("09:15", "09:45")))
	require.NoError(t, err)
	assert.True(t, res.Conflict, "overlapping request must be rejected")

	res, err = checker.Check(context.Background(), query(slot("09:30", "10:00")))
	require.NoError(t, err)
	assert.False(t, res.Conflict, "back-to-back request must be accepted")
}

func TestConflictsWithBoundaries(t *testing.T) {
	candidate := slot("10:00", "11:00")

	tests := []struct {
		name     string
		existing Slot
		want     bool
	}{
		{"existing ends at candidate start", slot("09:00", "10:00"), false},
		{"existing starts at candidate end", slot("11:00", "12:00"), false},
		{"existing starts at candidate start", slot("10:00", "10:15"), true},
		{"existing ends at candidate end", slot("10:45", "11:00"), true},
		{"identical", slot("10:00", "11:00"), true},
		{"existing straddles candidate start", slot("09:30", "10:30"), true},
		{"existing straddles candidate end", slot("10:30", "11:30"), true},
		{"existing contains candidate", slot("09:00", "12:00"), true},
		{"existing contained in candidate", slot("10:15", "10:45"), true},
		{"existing well before", slot("08:00", "09:00"), false},
		{"existing well after", slot("12:00", "13:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidate.ConflictsWith(tt.existing))
		})
	}
}
