package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// NewValidator returns a validator with the school enumerations registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return models.PaymentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("effort_level", func(fl validator.FieldLevel) bool {
		return models.EffortLevel(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	return v
}
