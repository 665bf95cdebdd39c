package transport

import (
	"regexp"
	"strings"
)

// ValidationErrors maps a field name to its first validation failure.
// Requests that fail validation never reach the network layer.
type ValidationErrors map[string]string

func (v ValidationErrors) Ok() bool { return len(v) == 0 }

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Validate checks the login form before submission.
func (r AuthenticateRequest) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if !validEmail(r.Email) {
		errs["email"] = "invalid email address"
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

// Validate checks the registration form before submission. confirmPassword
// is collected by the form but never sent to the backend.
func (r CreateCustomerRequest) Validate(confirmPassword string) ValidationErrors {
	errs := ValidationErrors{}
	if !validEmail(r.Email) {
		errs["email"] = "invalid email address"
	}
	if len(r.Password) < minPasswordLength {
		errs["password"] = "password must be at least 8 characters"
	}
	if confirmPassword != r.Password {
		errs["confirmPassword"] = "passwords do not match"
	}
	return errs
}

// Validate checks the password change form before submission.
func (r ChangePasswordRequest) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if r.CurrentPassword == "" {
		errs["currentPassword"] = "current password is required"
	}
	if len(r.NewPassword) < minPasswordLength {
		errs["newPassword"] = "password must be at least 8 characters"
	}
	if r.ConfirmPassword != r.NewPassword {
		errs["confirmPassword"] = "passwords do not match"
	}
	return errs
}

// Validate checks an address form before submission.
func (r CreateAddressRequest) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(r.Label) == "" {
		errs["label"] = "label is required"
	}
	if strings.TrimSpace(r.FullAddress) == "" {
		errs["fullAddress"] = "address is required"
	}
	if strings.TrimSpace(r.City) == "" {
		errs["city"] = "city is required"
	}
	return errs
}
