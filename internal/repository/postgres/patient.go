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

const patientColumns = `id, organization_id, first_name, last_name, email, phone,
	   date_of_birth, allergies, notes, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, organization_id, first_name, last_name, email, phone,
			date_of_birth, allergies, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.OrganizationID,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.Allergies,
		patient.Notes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			allergies = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND organization_id = $9 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.Allergies,
		patient.Notes,
		patient.UpdatedAt,
		patient.ID,
		patient.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE patients
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND organization_id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE organization_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{filters.OrganizationID}

	if filters.SearchTerm != "" {
		query += " AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)"
		args = append(args, "%"+filters.SearchTerm+"%")
	}

	query += " ORDER BY last_name ASC, first_name ASC"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
