package services

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Phone is optional, but when present must be 10-15 characters of
// digits and common punctuation.
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{10,15}$`)

// Global validator instance (reused across all requests)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// submissionInput carries the sanitized field values through validation.
type submissionInput struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Phone   string `validate:"omitempty,phone"`
	Subject string `validate:"required"`
	Message string `validate:"required"`
}

// validateSubmission checks the sanitized input and returns ("", true)
// when valid, or the user-facing rejection message otherwise. Missing
// required fields take precedence over format problems, and all missing
// field names are reported together.
func validateSubmission(in submissionInput) (string, bool) {
	err := validate.Struct(in)
	if err == nil {
		return "", true
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return MsgInvalidEmail, false
	}

	var missing []string
	badEmail := false
	badPhone := false
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			missing = append(missing, strings.ToLower(fe.Field()))
		case "email":
			badEmail = true
		case "phone":
			badPhone = true
		}
	}

	switch {
	case len(missing) > 0:
		return MsgMissingPrefix + strings.Join(missing, ", "), false
	case badEmail:
		return MsgInvalidEmail, false
	case badPhone:
		return MsgInvalidPhone, false
	}
	return MsgInvalidEmail, false
}
