// Package shipping validates the shipping address attached to an order.
// The rules target Tunisian addresses: 8-digit phone numbers with a
// restricted leading digit and 4-digit postal codes.
package shipping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fianka/shop-api/internal/models"
)

var (
	// Letters (including accented), spaces, hyphens and apostrophes.
	nameRe  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s\-']+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{8}$`)
	// Tunisian mobile and landline prefixes; 6 and 8 are not allocated.
	phoneLeadRe  = regexp.MustCompile(`^[234579]`)
	postalCodeRe = regexp.MustCompile(`^[0-9]{4}$`)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every failing field so callers can report them
// all at once; Error() names only the first for compact messages.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid shipping address"
	}
	return e.Fields[0].Error()
}

// Validate checks every field of the address and returns nil when all
// pass, or a ValidationError listing each failure.
func Validate(addr models.ShippingAddress) error {
	var fields []FieldError
	add := func(field, message string) {
		fields = append(fields, FieldError{Field: field, Message: message})
	}

	validateName(addr.FirstName, "firstName", "first name", add)
	validateName(addr.LastName, "lastName", "last name", add)

	switch email := strings.TrimSpace(addr.Email); {
	case email == "":
		add("email", "email is required")
	case !emailRe.MatchString(email):
		add("email", "invalid email format")
	}

	switch {
	case strings.TrimSpace(addr.Phone) == "":
		add("phone", "phone is required")
	case !phoneRe.MatchString(addr.Phone):
		add("phone", "phone must be exactly 8 digits")
	case !phoneLeadRe.MatchString(addr.Phone):
		add("phone", "phone must start with 2, 3, 4, 5, 7 or 9")
	}

	switch street := strings.TrimSpace(addr.Address); {
	case street == "":
		add("address", "address is required")
	case len([]rune(street)) < 10:
		add("address", "address must be at least 10 characters")
	}

	switch city := strings.TrimSpace(addr.City); {
	case city == "":
		add("city", "city is required")
	case len([]rune(city)) < 2:
		add("city", "city must be at least 2 characters")
	case !nameRe.MatchString(city):
		add("city", "city contains invalid characters")
	}

	switch {
	case strings.TrimSpace(addr.PostalCode) == "":
		add("postalCode", "postal code is required")
	case !postalCodeRe.MatchString(addr.PostalCode):
		add("postalCode", "postal code must be exactly 4 digits")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateName(value, field, label string, add func(field, message string)) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		add(field, label+" is required")
	case len([]rune(trimmed)) < 2:
		add(field, label+" must be at least 2 characters")
	case !nameRe.MatchString(trimmed):
		add(field, label+" contains invalid characters")
	}
}
