package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	"github.com/odontoware/clinic-api/internal/scheduling"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
)

const appointmentColumns = `id, organization_id, doctor_id, patient_id, date,
	   start_time, end_time, status, type, reason, notes,
	   duration_minutes, cancel_reason, created_at, updated_at`

const dateLayout = "2006-01-02"

type bookedSlotRow struct {
	ID        uuid.UUID `db:"id"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	Status    string    `db:"status"`
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, q scheduling.Query) ([]scheduling.BookedSlot, error) {
	return bookedSlots(ctx, r.db, q)
}

// bookedSlots applies the full query scope (organization, doctor, date,
// exclusion) so the checker only has to evaluate intervals.
func bookedSlots(ctx context.Context, db sqlx.QueryerContext, q scheduling.Query) ([]scheduling.BookedSlot, error) {
	query := `
		SELECT id, start_time, end_time, status
		FROM appointments
		WHERE organization_id = $1
		AND doctor_id = $2
		AND date = $3
		AND deleted_at IS NULL
	`
	args := []interface{}{q.OrganizationID, q.DoctorID, q.Date.Format(dateLayout)}

	if q.ExcludeID != nil {
		query += " AND id != $4"
		args = append(args, *q.ExcludeID)
	}

	query += " ORDER BY start_time ASC"

	var rows []bookedSlotRow
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query booked slots: %w", err)
	}

	slots := make([]scheduling.BookedSlot, 0, len(rows))
	for _, row := range rows {
		slot, err := scheduling.NewSlot(row.StartTime, row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("corrupt slot times on appointment %s: %w", row.ID, err)
		}
		slots = append(slots, scheduling.BookedSlot{
			ID:        row.ID,
			Slot:      slot,
			Cancelled: row.Status == string(model.AppointmentStatusCancelled),
		})
	}
	return slots, nil
}

func (r *appointmentRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND organization_id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE organization_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{filters.OrganizationID}
	argCount := 2

	if filters.DoctorID != nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, *filters.DoctorID)
		argCount++
	}
	if filters.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, *filters.PatientID)
		argCount++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.FromDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.FromDate.Format(dateLayout))
		argCount++
	}
	if filters.ToDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.ToDate.Format(dateLayout))
		argCount++
	}

	query += " ORDER BY date ASC, start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// WithSlotLock serializes bookings per (organization, doctor, date) with a
// transaction-scoped advisory lock. Concurrent requests for the same slot
// key queue on the lock, so the second one re-reads after the first commits
// and sees its booking.
func (r *appointmentRepository) WithSlotLock(ctx context.Context, orgID, doctorID uuid.UUID, date time.Time, fn func(ctx context.Context, tx repository.SlotTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	lockKey := fmt.Sprintf("slot:%s:%s:%s", orgID, doctorID, date.Format(dateLayout))
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	if err := fn(ctx, &slotTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type slotTx struct {
	tx *sqlx.Tx
}

func (t *slotTx) BookedSlots(ctx context.Context, q scheduling.Query) ([]scheduling.BookedSlot, error) {
	return bookedSlots(ctx, t.tx, q)
}

func (t *slotTx) Insert(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, organization_id, doctor_id, patient_id, date,
			start_time, end_time, status, type, reason, notes,
			duration_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := t.tx.ExecContext(ctx, query,
		appointment.ID,
		appointment.OrganizationID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.Date.Format(dateLayout),
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Type,
		appointment.Reason,
		appointment.Notes,
		appointment.DurationMinutes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (t *slotTx) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, date = $2, start_time = $3, end_time = $4,
			status = $5, type = $6, reason = $7, notes = $8,
			duration_minutes = $9, cancel_reason = $10, updated_at = $11
		WHERE id = $12 AND organization_id = $13 AND deleted_at IS NULL
	`
	appointment.UpdatedAt = time.Now()

	result, err := t.tx.ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.Date.Format(dateLayout),
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Type,
		appointment.Reason,
		appointment.Notes,
		appointment.DurationMinutes,
		appointment.CancelReason,
		appointment.UpdatedAt,
		appointment.ID,
		appointment.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (t *slotTx) InsertEvent(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, t.tx, event)
}
