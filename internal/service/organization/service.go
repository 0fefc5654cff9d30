package organization

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.OrganizationRepository
}

func NewService(repo repository.OrganizationRepository) *Service {
	return &Service{repo: repo}
}

// CreateOrganization registers a tenant. The API secret is stored only as a
// bcrypt hash; the caller must keep the plaintext.
func (s *Service) CreateOrganization(ctx context.Context, req *model.CreateOrganizationRequest) (*model.Organization, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.APISecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	org := &model.Organization{
		Base:          model.Base{ID: uuid.New()},
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		APISecretHash: string(hash),
	}

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	return s.repo.List(ctx)
}

// VerifySecret checks an organization's API secret against the stored hash.
func (s *Service) VerifySecret(ctx context.Context, id uuid.UUID, secret string) (*model.Organization, error) {
	org, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(org.APISecretHash), []byte(secret)); err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return org, nil
}
