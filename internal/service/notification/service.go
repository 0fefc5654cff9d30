package notification

import (
	"context"
	"fmt"

	"github.com/odontoware/clinic-api/internal/email"
	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
)

// Service sends user-facing notifications for appointment lifecycle events.
// Failures here never fail the booking: callers fire-and-forget and log.
type Service interface {
	NotifyAppointment(ctx context.Context, apt *model.Appointment, eventType string) error
}

type service struct {
	emailSvc    email.Service
	patientRepo repository.PatientRepository
}

func NewService(emailSvc email.Service, patientRepo repository.PatientRepository) Service {
	return &service{
		emailSvc:    emailSvc,
		patientRepo: patientRepo,
	}
}

func (s *service) NotifyAppointment(ctx context.Context, apt *model.Appointment, eventType string) error {
	patient, err := s.patientRepo.Get(ctx, apt.OrganizationID, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient for notification: %w", err)
	}
	if patient.Email == "" {
		return nil
	}

	subject, body := composeMessage(apt, patient, eventType)
	if subject == "" {
		return nil
	}
	return s.emailSvc.Send(ctx, patient.Email, subject, body)
}

func composeMessage(apt *model.Appointment, patient *model.Patient, eventType string) (subject, body string) {
	when := fmt.Sprintf("%s %s-%s", apt.Date.Format("2006-01-02"), apt.StartTime, apt.EndTime)

	switch eventType {
	case model.EventAppointmentCreated:
		subject = "Appointment confirmed"
		body = fmt.Sprintf("Hi %s, your appointment is confirmed for %s.", patient.FirstName, when)
	case model.EventAppointmentUpdated:
		subject = "Appointment updated"
		body = fmt.Sprintf("Hi %s, your appointment was rescheduled to %s.", patient.FirstName, when)
	case model.EventAppointmentCancelled:
		subject = "Appointment cancelled"
		body = fmt.Sprintf("Hi %s, your appointment on %s has been cancelled.", patient.FirstName, when)
	}
	return subject, body
}
