package validation

import (
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// phoneRe accepts digits with optional leading +, spaces, dashes and
// parentheses, 7 to 20 characters.
var phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)

// New returns a configured validator with the storefront's custom rules
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// notblank: required catches empty strings but not whitespace-only ones
	_ = v.RegisterValidation("notblank", func(fl validatorv10.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("phone", func(fl validatorv10.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	return v
}
