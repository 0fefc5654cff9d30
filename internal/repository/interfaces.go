package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/scheduling"
)

// All repository interfaces in one file
type (
	// SlotTx is the transactional surface handed to the booking flow while
	// the slot's advisory lock is held. Reads through it see the same
	// snapshot the subsequent write commits against, which closes the
	// check-then-act race between concurrent bookings.
	SlotTx interface {
		scheduling.SlotReader
		Insert(ctx context.Context, appointment *model.Appointment) error
		Update(ctx context.Context, appointment *model.Appointment) error
		InsertEvent(ctx context.Context, event *model.OutboxEvent) error
	}

	AppointmentRepository interface {
		scheduling.SlotReader

		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error)
		Delete(ctx context.Context, orgID, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)

		// WithSlotLock runs fn inside a transaction holding the advisory
		// lock for (orgID, doctorID, date). All slot reads and the final
		// insert/update must go through the provided SlotTx.
		WithSlotLock(ctx context.Context, orgID, doctorID uuid.UUID, date time.Time, fn func(ctx context.Context, tx SlotTx) error) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, orgID, id uuid.UUID) error
		List(ctx context.Context, orgID uuid.UUID) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, orgID, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	OrganizationRepository interface {
		Create(ctx context.Context, org *model.Organization) error
		Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
		Update(ctx context.Context, org *model.Organization) error
		List(ctx context.Context) ([]*model.Organization, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
	}
)
