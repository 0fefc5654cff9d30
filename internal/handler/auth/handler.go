package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/service/auth"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
	"github.com/odontoware/clinic-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/token", h.IssueToken)
}

// IssueToken exchanges an organization's API secret for a bearer token.
func (h *Handler) IssueToken(c *gin.Context) {
	var req model.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	token, err := h.service.IssueToken(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, token)
}
