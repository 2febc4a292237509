package validator

import "github.com/go-playground/validator/v10"

// Service coverage area (Tucumán province). Reports outside these bounds
// are rejected at the boundary.
const (
	minLat = -27.6
	maxLat = -26.0
	minLng = -66.2
	maxLng = -64.4
)

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("alert_type", validateAlertType)
	validate.RegisterValidation("vote_type", validateVoteType)
	validate.RegisterValidation("bounds_lat", validateBoundsLat)
	validate.RegisterValidation("bounds_lng", validateBoundsLng)
}

func validateAlertType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "flood", "power_outage":
		return true
	}
	return false
}

func validateVoteType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "confirm", "reject":
		return true
	}
	return false
}

func validateBoundsLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= minLat && lat <= maxLat
}

func validateBoundsLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= minLng && lng <= maxLng
}
