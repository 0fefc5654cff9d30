package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/odontoware/clinic-api/internal/scheduling"
)

// RegisterValidators installs the custom binding rules used by the request
// models. Must run once before the router starts accepting traffic.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := scheduling.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}
