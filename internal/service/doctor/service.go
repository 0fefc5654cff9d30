package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	"github.com/odontoware/clinic-api/internal/scheduling"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, orgID uuid.UUID, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		OrganizationID: orgID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialty:      req.Specialty,
		WorkdayStart:   req.WorkdayStart,
		WorkdayEnd:     req.WorkdayEnd,
		SlotMinutes:    req.SlotMinutes,
		Status:         model.DoctorStatusActive,
	}

	if err := validateWorkday(doctor); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, orgID, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, orgID, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.WorkdayStart != nil {
		doctor.WorkdayStart = *req.WorkdayStart
	}
	if req.WorkdayEnd != nil {
		doctor.WorkdayEnd = *req.WorkdayEnd
	}
	if req.SlotMinutes != nil {
		doctor.SlotMinutes = *req.SlotMinutes
	}
	if req.Status != nil {
		doctor.Status = *req.Status
	}

	if err := validateWorkday(doctor); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, orgID, id)
}

func (s *Service) ListDoctors(ctx context.Context, orgID uuid.UUID) ([]*model.Doctor, error) {
	return s.repo.List(ctx, orgID)
}

func validateWorkday(doctor *model.Doctor) error {
	if doctor.WorkdayStart == "" && doctor.WorkdayEnd == "" {
		return nil
	}
	if _, err := scheduling.NewSlot(doctor.WorkdayStart, doctor.WorkdayEnd); err != nil {
		return apperrors.BadRequest("invalid workday window", err)
	}
	return nil
}
