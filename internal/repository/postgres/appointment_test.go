package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	"github.com/odontoware/clinic-api/internal/scheduling"
)

func newMockRepo(t *testing.T) (repository.AppointmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAppointmentRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestBookedSlotsScoping(t *testing.T) {
	repo, mock := newMockRepo(t)

	orgID := uuid.New()
	doctorID := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	existingID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WithArgs(orgID, doctorID, "2024-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "status"}).
			AddRow(existingID, "09:00", "09:30", "scheduled").
			AddRow(uuid.New(), "10:00", "10:30", "cancelled"))

	slots, err := repo.BookedSlots(context.Background(), scheduling.Query{
		OrganizationID: orgID,
		DoctorID:       doctorID,
		Date:           date,
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, existingID, slots[0].ID)
	assert.Equal(t, "09:00", slots[0].Slot.Start.String())
	assert.Equal(t, "09:30", slots[0].Slot.End.String())
	assert.False(t, slots[0].Cancelled)
	assert.True(t, slots[1].Cancelled)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedSlotsExcludesID(t *testing.T) {
	repo, mock := newMockRepo(t)

	orgID := uuid.New()
	doctorID := uuid.New()
	excludeID := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("AND id != $4")).
		WithArgs(orgID, doctorID, "2024-03-01", excludeID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "status"}))

	slots, err := repo.BookedSlots(context.Background(), scheduling.Query{
		OrganizationID: orgID,
		DoctorID:       doctorID,
		Date:           date,
		ExcludeID:      &excludeID,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedSlotsRejectsCorruptRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "status"}).
			AddRow(uuid.New(), "25:00", "26:00", "scheduled"))

	_, err := repo.BookedSlots(context.Background(), scheduling.Query{
		OrganizationID: uuid.New(),
		DoctorID:       uuid.New(),
		Date:           time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt slot times")
}

func TestWithSlotLockCommitsOnSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	orgID := uuid.New()
	doctorID := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs("slot:" + orgID.String() + ":" + doctorID.String() + ":2024-03-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "status"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.WithSlotLock(context.Background(), orgID, doctorID, date, func(ctx context.Context, tx repository.SlotTx) error {
		slots, err := tx.BookedSlots(ctx, scheduling.Query{OrganizationID: orgID, DoctorID: doctorID, Date: date})
		require.NoError(t, err)
		require.Empty(t, slots)

		apt := &model.Appointment{
			Base:           model.Base{ID: uuid.New()},
			OrganizationID: orgID,
			DoctorID:       doctorID,
			PatientID:      uuid.New(),
			Date:           date,
			StartTime:      "09:00",
			EndTime:        "09:30",
			Status:         model.AppointmentStatusScheduled,
			Type:           "checkup",
		}
		if err := tx.Insert(ctx, apt); err != nil {
			return err
		}

		event, err := model.NewOutboxEvent(model.EventAppointmentCreated, apt)
		require.NoError(t, err)
		return tx.InsertEvent(ctx, event)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSlotLockRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	orgID := uuid.New()
	doctorID := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	sentinel := assert.AnError
	err := repo.WithSlotLock(context.Background(), orgID, doctorID, date, func(ctx context.Context, tx repository.SlotTx) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppointmentsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	orgID := uuid.New()
	doctorID := uuid.New()
	status := model.AppointmentStatusScheduled

	mock.ExpectQuery(regexp.QuoteMeta("AND doctor_id = $2 AND status = $3")).
		WithArgs(orgID, doctorID, status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "doctor_id", "patient_id", "date",
			"start_time", "end_time", "status", "type", "reason", "notes",
			"duration_minutes", "cancel_reason", "created_at", "updated_at"}))

	_, err := repo.List(context.Background(), &model.AppointmentFilters{
		OrganizationID: orgID,
		DoctorID:       &doctorID,
		Status:         &status,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
