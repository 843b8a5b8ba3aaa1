package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	npiPattern = regexp.MustCompile(`^\d{10}$`)
	mrnPattern = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("npi", validateNPI)
	validate.RegisterValidation("mrn", validateMRN)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateNPI(fl validator.FieldLevel) bool {
	return npiPattern.MatchString(fl.Field().String())
}

func validateMRN(fl validator.FieldLevel) bool {
	return mrnPattern.MatchString(fl.Field().String())
}
