package resource

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/schedulink/schedulink/core"
)

var (
	kindTag    = "resourcekind"
	kindText   = "invalid resource kind"
	statusTag  = "bookingstatus"
	statusText = "invalid booking status"
)

// InitValidators registers the resource package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(kindTag, kindValidation)
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)

	_ = validate.RegisterValidation(statusTag, bookingStatusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func kindValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, kind := range AllKinds {
		if val == kind {
			return true
		}
	}
	return false
}

func bookingStatusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, status := range AllBookingStatuses {
		if val == status {
			return true
		}
	}
	return false
}
