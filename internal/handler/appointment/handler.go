package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/odontoware/clinic-api/internal/middleware"
	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/service/appointment"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
	"github.com/odontoware/clinic-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), orgID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", nil))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), orgID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	filters := &model.AppointmentFilters{OrganizationID: orgID}

	if raw := c.Query("doctor_id"); raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", nil))
			return
		}
		filters.DoctorID = &doctorID
	}

	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", nil))
			return
		}
		filters.PatientID = &patientID
	}

	if raw := c.Query("status"); raw != "" {
		status := model.AppointmentStatus(raw)
		filters.Status = &status
	}

	if raw := c.Query("from_date"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from_date", nil))
			return
		}
		filters.FromDate = &from
	}

	if raw := c.Query("to_date"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to_date", nil))
			return
		}
		filters.ToDate = &to
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", nil))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), orgID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", nil))
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.CancelAppointment(c.Request.Context(), orgID, id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", nil))
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), orgID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetAvailability returns the bookable slots for a doctor on a given date.
func (h *Handler) GetAvailability(c *gin.Context) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", nil))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid date format, expected YYYY-MM-DD", nil))
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), orgID, doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}
