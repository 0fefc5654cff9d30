package model

// Organization is a tenant: one dental practice. Every appointment, doctor,
// and patient row is scoped to exactly one organization, and conflict checks
// never cross that boundary.
type Organization struct {
	Base
	Name          string `db:"name" json:"name"`
	Email         string `db:"email" json:"email"`
	Phone         string `db:"phone" json:"phone,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`
	APISecretHash string `db:"api_secret_hash" json:"-"`
}

type CreateOrganizationRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	APISecret string `json:"api_secret" binding:"required,min=16"`
}

// TokenRequest exchanges an organization's API credentials for a JWT.
type TokenRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	APISecret      string `json:"api_secret" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
