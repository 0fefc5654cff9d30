package organization

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/service/organization"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
	"github.com/odontoware/clinic-api/pkg/httputil"
)

type Handler struct {
	service *organization.Service
}

func NewHandler(service *organization.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the organization endpoints. Creation is open so new
// tenants can onboard; reads require an authenticated caller and are mounted
// separately.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orgs := r.Group("/organizations")
	{
		orgs.POST("", h.CreateOrganization)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	orgs := r.Group("/organizations")
	{
		orgs.GET("/:id", h.GetOrganization)
	}
}

func (h *Handler) CreateOrganization(c *gin.Context) {
	var req model.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	org, err := h.service.CreateOrganization(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, org)
}

func (h *Handler) GetOrganization(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid organization ID", nil))
		return
	}

	org, err := h.service.GetOrganization(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, org)
}
