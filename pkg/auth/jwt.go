package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService mints and validates tenant-scoped access tokens. The
// organization id travels in the token claims; handlers never accept it
// from the request body.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

type Claims struct {
	OrganizationID string `json:"org_id"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

func (s *TokenService) Generate(orgID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		OrganizationID: orgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orgID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses the token and returns the organization id it carries.
func (s *TokenService) Validate(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid org claim: %w", err)
	}
	return orgID, nil
}
