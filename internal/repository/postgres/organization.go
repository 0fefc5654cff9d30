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

const organizationColumns = `id, name, email, phone, address, api_secret_hash,
	   created_at, updated_at`

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) error {
	query := `
		INSERT INTO organizations (
			id, name, email, phone, address, api_secret_hash,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Email,
		org.Phone,
		org.Address,
		org.APISecretHash,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *organizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`
	var org model.Organization
	err := r.db.GetContext(ctx, &org, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("organization", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *model.Organization) error {
	query := `
		UPDATE organizations
		SET name = $1, email = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	org.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		org.Name,
		org.Email,
		org.Phone,
		org.Address,
		org.UpdatedAt,
		org.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("organization", nil)
	}
	return nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*model.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`
	var orgs []*model.Organization
	if err := r.db.SelectContext(ctx, &orgs, query); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}
