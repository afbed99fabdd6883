package common

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	freeFireUIDPattern  = regexp.MustCompile(`^\d{9}$`)
	walletNumberPattern = regexp.MustCompile(`^\d{11}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so details match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("ffuid", func(fl validator.FieldLevel) bool {
		return freeFireUIDPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return walletNumberPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidFreeFireUID reports whether uid is exactly nine digits.
func ValidFreeFireUID(uid string) bool {
	return freeFireUIDPattern.MatchString(uid)
}

// ValidWalletNumber reports whether number is exactly eleven digits.
func ValidWalletNumber(number string) bool {
	return walletNumberPattern.MatchString(number)
}

// ValidateStruct runs struct tag validation and returns a *ValidationError on failure.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	return &ValidationError{Details: FormatValidationError(vErrs)}
}

// NewValidationError builds a validation error from already formatted messages.
func NewValidationError(details ...string) error {
	return &ValidationError{Details: details}
}

func FormatValidationError(err error) []string {
	var errs []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()

			switch e.Tag() {
			case "required":
				errs = append(errs, fmt.Sprintf("%s is required", field))
			case "email":
				errs = append(errs, fmt.Sprintf("%s must be a valid email", field))
			case "min":
				errs = append(errs, fmt.Sprintf("%s must have minimum length %s", field, e.Param()))
			case "max":
				errs = append(errs, fmt.Sprintf("%s must have maximum length %s", field, e.Param()))
			case "oneof":
				errs = append(errs, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
			case "ffuid":
				errs = append(errs, fmt.Sprintf("%s must be exactly 9 digits", field))
			case "wallet":
				errs = append(errs, fmt.Sprintf("%s must be exactly 11 digits", field))
			default:
				errs = append(errs, fmt.Sprintf("%s is invalid (%s)", field, e.Tag()))
			}
		}
	}
	return errs
}
