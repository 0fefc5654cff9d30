package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/odontoware/clinic-api/internal/config"
	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	"github.com/odontoware/clinic-api/internal/scheduling"
	"github.com/odontoware/clinic-api/internal/service/notification"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
	"github.com/odontoware/clinic-api/pkg/logger"
)

// ConflictMessage is the user-facing rejection for a double-booked slot.
// Kept in Spanish: the client applications render it verbatim.
const ConflictMessage = "Ya existe una cita en este horario para el doctor seleccionado"

const dateLayout = "2006-01-02"

// Defaults applied when a doctor has no workday window configured.
const (
	defaultWorkdayStart = "09:00"
	defaultWorkdayEnd   = "17:00"
	defaultSlotMinutes  = 30
)

type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	notifier    notification.Service
	checkerOpts scheduling.Options
	availCache  *cache.Cache
	logger      *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	notifier notification.Service,
	cfg config.SchedulingConfig,
	log *logger.Logger,
) *Service {
	ttl := cfg.AvailabilityCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		notifier:    notifier,
		checkerOpts: scheduling.Options{IgnoreCancelled: cfg.IgnoreCancelled},
		availCache:  cache.New(ttl, 2*ttl),
		logger:      log,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, orgID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if orgID == uuid.Nil || req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, apperrors.BadRequest("missing required fields", nil)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date format", err)
	}

	slot, err := scheduling.NewSlot(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		OrganizationID:  orgID,
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Date:            date,
		StartTime:       slot.Start.String(),
		EndTime:         slot.End.String(),
		Status:          model.AppointmentStatusScheduled,
		Type:            req.Type,
		Reason:          req.Reason,
		Notes:           req.Notes,
		DurationMinutes: slot.Duration(),
	}

	err = s.repo.WithSlotLock(ctx, orgID, apt.DoctorID, date, func(ctx context.Context, tx repository.SlotTx) error {
		result, err := scheduling.NewChecker(tx, s.checkerOpts).Check(ctx, scheduling.Query{
			OrganizationID: orgID,
			DoctorID:       apt.DoctorID,
			Date:           date,
			Slot:           slot,
		})
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if result.Conflict {
			return apperrors.Conflict(ConflictMessage)
		}

		if err := tx.Insert(ctx, apt); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventAppointmentCreated, apt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(orgID, apt.DoctorID, date)
	s.notifyAsync(apt, model.EventAppointmentCreated)
	return apt, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, orgID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	prevDoctor, prevDate := apt.DoctorID, apt.Date

	applyUpdate(apt, req)

	date := apt.Date
	slot, err := scheduling.NewSlot(apt.StartTime, apt.EndTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	apt.DurationMinutes = slot.Duration()

	// The appointment's own row is excluded so it never conflicts with
	// itself, including updates that do not touch the time fields.
	excludeID := apt.ID

	err = s.repo.WithSlotLock(ctx, orgID, apt.DoctorID, date, func(ctx context.Context, tx repository.SlotTx) error {
		result, err := scheduling.NewChecker(tx, s.checkerOpts).Check(ctx, scheduling.Query{
			OrganizationID: orgID,
			DoctorID:       apt.DoctorID,
			Date:           date,
			Slot:           slot,
			ExcludeID:      &excludeID,
		})
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if result.Conflict {
			return apperrors.Conflict(ConflictMessage)
		}

		if err := tx.Update(ctx, apt); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventAppointmentUpdated, apt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(orgID, prevDoctor, prevDate)
	s.invalidateAvailability(orgID, apt.DoctorID, date)
	s.notifyAsync(apt, model.EventAppointmentUpdated)
	return apt, nil
}

func (s *Service) CancelAppointment(ctx context.Context, orgID, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("cannot cancel a completed appointment", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason

	err = s.repo.WithSlotLock(ctx, orgID, apt.DoctorID, apt.Date, func(ctx context.Context, tx repository.SlotTx) error {
		if err := tx.Update(ctx, apt); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventAppointmentCancelled, apt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(orgID, apt.DoctorID, apt.Date)
	s.notifyAsync(apt, model.EventAppointmentCancelled)
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, orgID, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}

	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("can only delete cancelled appointments", nil)
	}

	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	s.invalidateAvailability(orgID, apt.DoctorID, apt.Date)
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// GetAvailability returns the doctor's free slots for a date: the workday
// grid minus anything that would conflict with an existing booking. Results
// are cached briefly; every booking write for the same (doctor, date)
// invalidates the entry.
func (s *Service) GetAvailability(ctx context.Context, orgID, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	key := availabilityKey(orgID, doctorID, date)
	if cached, ok := s.availCache.Get(key); ok {
		return cached.([]model.TimeSlot), nil
	}

	doctor, err := s.doctorRepo.Get(ctx, orgID, doctorID)
	if err != nil {
		return nil, err
	}

	workStart, workEnd, step := workday(doctor)

	booked, err := s.repo.BookedSlots(ctx, scheduling.Query{
		OrganizationID: orgID,
		DoctorID:       doctorID,
		Date:           date,
	})
	if err != nil {
		return nil, err
	}

	free := make([]model.TimeSlot, 0)
	for start := workStart; start.Add(step) <= workEnd; start = start.Add(step) {
		candidate := scheduling.Slot{Start: start, End: start.Add(step)}
		if s.slotTaken(candidate, booked) {
			continue
		}
		free = append(free, model.TimeSlot{
			Start: candidate.Start.String(),
			End:   candidate.End.String(),
		})
	}

	s.availCache.SetDefault(key, free)
	return free, nil
}

func (s *Service) slotTaken(candidate scheduling.Slot, booked []scheduling.BookedSlot) bool {
	for _, b := range booked {
		if s.checkerOpts.IgnoreCancelled && b.Cancelled {
			continue
		}
		if candidate.ConflictsWith(b.Slot) {
			return true
		}
	}
	return false
}

func (s *Service) enqueueEvent(ctx context.Context, tx repository.SlotTx, eventType string, apt *model.Appointment) error {
	event, err := model.NewOutboxEvent(eventType, apt)
	if err != nil {
		return fmt.Errorf("failed to build outbox event: %w", err)
	}
	return tx.InsertEvent(ctx, event)
}

func (s *Service) notifyAsync(apt *model.Appointment, eventType string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.NotifyAppointment(ctx, apt, eventType); err != nil {
			s.logger.Error(err, "failed to send appointment notification",
				"appointment_id", apt.ID.String(), "event", eventType)
		}
	}()
}

func (s *Service) invalidateAvailability(orgID, doctorID uuid.UUID, date time.Time) {
	s.availCache.Delete(availabilityKey(orgID, doctorID, date))
}

func availabilityKey(orgID, doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("avail:%s:%s:%s", orgID, doctorID, date.Format(dateLayout))
}

func workday(doctor *model.Doctor) (start, end scheduling.TimeOfDay, stepMinutes int) {
	start = scheduling.MustParseTimeOfDay(defaultWorkdayStart)
	end = scheduling.MustParseTimeOfDay(defaultWorkdayEnd)
	stepMinutes = defaultSlotMinutes

	if t, err := scheduling.ParseTimeOfDay(doctor.WorkdayStart); err == nil {
		start = t
	}
	if t, err := scheduling.ParseTimeOfDay(doctor.WorkdayEnd); err == nil {
		end = t
	}
	if doctor.SlotMinutes > 0 {
		stepMinutes = doctor.SlotMinutes
	}
	return start, end, stepMinutes
}

func applyUpdate(apt *model.Appointment, req *model.UpdateAppointmentRequest) {
	if req.DoctorID != nil {
		apt.DoctorID = *req.DoctorID
	}
	if req.Date != nil {
		if d, err := time.Parse(dateLayout, *req.Date); err == nil {
			apt.Date = d
		}
	}
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
}
