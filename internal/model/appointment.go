package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Appointment is a booked slot for one doctor on one calendar date. Times
// are wall-clock HH:MM strings; Date carries only the calendar day. The
// pairwise no-overlap invariant per (organization, doctor, date) is enforced
// by the scheduling checker at create and update time.
type Appointment struct {
	Base
	OrganizationID  uuid.UUID         `db:"organization_id" json:"organization_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date            time.Time         `db:"date" json:"date"`
	StartTime       string            `db:"start_time" json:"start_time"`
	EndTime         string            `db:"end_time" json:"end_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Type            string            `db:"type" json:"type"`
	Reason          string            `db:"reason" json:"reason,omitempty"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	CancelReason    *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string    `json:"start_time" binding:"required,timeofday"`
	EndTime   string    `json:"end_time" binding:"required,timeofday"`
	Type      string    `json:"type" binding:"required"`
	Reason    string    `json:"reason" binding:"max=500"`
	Notes     string    `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	DoctorID  *uuid.UUID         `json:"doctor_id"`
	Date      *string            `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime *string            `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   *string            `json:"end_time" binding:"omitempty,timeofday"`
	Status    *AppointmentStatus `json:"status"`
	Type      *string            `json:"type"`
	Reason    *string            `json:"reason" binding:"omitempty,max=500"`
	Notes     *string            `json:"notes" binding:"omitempty,max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AppointmentFilters narrows appointment listings. OrganizationID is always
// set from the authenticated tenant; the rest are optional.
type AppointmentFilters struct {
	OrganizationID uuid.UUID
	DoctorID       *uuid.UUID
	PatientID      *uuid.UUID
	Status         *AppointmentStatus
	FromDate       *time.Time
	ToDate         *time.Time
}

// TimeSlot is a bookable window offered by the availability endpoint.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
