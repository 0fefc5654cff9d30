package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/service/organization"
	"github.com/odontoware/clinic-api/pkg/auth"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
)

type Service struct {
	orgSvc *organization.Service
	tokens *auth.TokenService
}

func NewService(orgSvc *organization.Service, tokens *auth.TokenService) *Service {
	return &Service{orgSvc: orgSvc, tokens: tokens}
}

// IssueToken exchanges an organization's API credentials for an access token.
func (s *Service) IssueToken(ctx context.Context, req *model.TokenRequest) (*model.TokenResponse, error) {
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid organization id", err)
	}

	org, err := s.orgSvc.VerifySecret(ctx, orgID, req.APISecret)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(org.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.Expiry().Seconds()),
	}, nil
}
