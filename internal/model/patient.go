package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email,omitempty"`
	Phone          string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Allergies      string     `db:"allergies" json:"allergies,omitempty"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Allergies   string `json:"allergies"`
	Notes       string `json:"notes"`
}

type UpdatePatientRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Allergies *string `json:"allergies"`
	Notes     *string `json:"notes"`
}

type PatientFilters struct {
	OrganizationID uuid.UUID
	SearchTerm     string
}
