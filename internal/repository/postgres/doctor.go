package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/model"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
)

const doctorColumns = `id, organization_id, first_name, last_name, email, phone,
	   specialty, workday_start, workday_end, slot_minutes, status,
	   created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, organization_id, first_name, last_name, email, phone,
			specialty, workday_start, workday_end, slot_minutes, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.OrganizationID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Email,
		doctor.Phone,
		doctor.Specialty,
		doctor.WorkdayStart,
		doctor.WorkdayEnd,
		doctor.SlotMinutes,
		doctor.Status,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			specialty = $5, workday_start = $6, workday_end = $7,
			slot_minutes = $8, status = $9, updated_at = $10
		WHERE id = $11 AND organization_id = $12 AND deleted_at IS NULL
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.FirstName,
		doctor.LastName,
		doctor.Email,
		doctor.Phone,
		doctor.Specialty,
		doctor.WorkdayStart,
		doctor.WorkdayEnd,
		doctor.SlotMinutes,
		doctor.Status,
		doctor.UpdatedAt,
		doctor.ID,
		doctor.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE doctors
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND organization_id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, orgID uuid.UUID) ([]*model.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY last_name ASC, first_name ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
