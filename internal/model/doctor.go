package model

import "github.com/google/uuid"

type DoctorStatus string

const (
	DoctorStatusActive   DoctorStatus = "active"
	DoctorStatusInactive DoctorStatus = "inactive"
)

// Doctor is a staff member who can be booked for appointments. The workday
// window bounds the slots the availability endpoint offers; it does not
// constrain manual bookings.
type Doctor struct {
	Base
	OrganizationID uuid.UUID    `db:"organization_id" json:"organization_id"`
	FirstName      string       `db:"first_name" json:"first_name"`
	LastName       string       `db:"last_name" json:"last_name"`
	Email          string       `db:"email" json:"email"`
	Phone          string       `db:"phone" json:"phone,omitempty"`
	Specialty      string       `db:"specialty" json:"specialty,omitempty"`
	WorkdayStart   string       `db:"workday_start" json:"workday_start"`
	WorkdayEnd     string       `db:"workday_end" json:"workday_end"`
	SlotMinutes    int          `db:"slot_minutes" json:"slot_minutes"`
	Status         DoctorStatus `db:"status" json:"status"`
}

type CreateDoctorRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Specialty    string `json:"specialty"`
	WorkdayStart string `json:"workday_start" binding:"omitempty,timeofday"`
	WorkdayEnd   string `json:"workday_end" binding:"omitempty,timeofday"`
	SlotMinutes  int    `json:"slot_minutes" binding:"omitempty,min=5,max=240"`
}

type UpdateDoctorRequest struct {
	FirstName    *string       `json:"first_name"`
	LastName     *string       `json:"last_name"`
	Email        *string       `json:"email" binding:"omitempty,email"`
	Phone        *string       `json:"phone"`
	Specialty    *string       `json:"specialty"`
	WorkdayStart *string       `json:"workday_start" binding:"omitempty,timeofday"`
	WorkdayEnd   *string       `json:"workday_end" binding:"omitempty,timeofday"`
	SlotMinutes  *int          `json:"slot_minutes" binding:"omitempty,min=5,max=240"`
	Status       *DoctorStatus `json:"status"`
}
