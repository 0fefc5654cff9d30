package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odontoware/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError maps the error to its HTTP status. Internal errors are
// returned with a generic message; detail stays in the logs.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
		if status != http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	_ = c.Error(err)
	c.JSON(status, Response{
		Status:  "error",
		Message: message,
	})
}
