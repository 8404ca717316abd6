package shipping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fianka/shop-api/internal/models"
)

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName:  "Amira",
		LastName:   "Ben Salah",
		Email:      "amira@example.com",
		Phone:      "21234567",
		Address:    "12 Avenue Habib Bourguiba",
		City:       "Tunis",
		PostalCode: "1001",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	names := make([]string, 0, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, Validate(validAddress()))
}

func TestValidateAcceptsAccentedNames(t *testing.T) {
	addr := validAddress()
	addr.FirstName = "Héla"
	addr.LastName = "N'Guyen-Dupré"
	addr.City = "Béja"
	assert.NoError(t, Validate(addr))
}

func TestValidateRejectsPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{"too short", "123"},
		{"too long", "212345678"},
		{"non-digit", "2123456a"},
		{"unallocated prefix 6", "61234567"},
		{"unallocated prefix 8", "81234567"},
		{"leading zero", "01234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			addr.Phone = tt.phone
			assert.Contains(t, fieldNames(t, Validate(addr)), "phone")
		})
	}
}

func TestValidateRejectsShortName(t *testing.T) {
	addr := validAddress()
	addr.FirstName = "A"
	assert.Contains(t, fieldNames(t, Validate(addr)), "firstName")
}

func TestValidateRejectsDigitsInName(t *testing.T) {
	addr := validAddress()
	addr.LastName = "Ben4li"
	assert.Contains(t, fieldNames(t, Validate(addr)), "lastName")
}

func TestValidateRejectsEmail(t *testing.T) {
	for _, email := range []string{"", "no-at-sign", "a@b", "a @b.com"} {
		addr := validAddress()
		addr.Email = email
		assert.Contains(t, fieldNames(t, Validate(addr)), "email", "email %q", email)
	}
}

func TestValidateRejectsShortAddress(t *testing.T) {
	addr := validAddress()
	addr.Address = "Rue 5"
	assert.Contains(t, fieldNames(t, Validate(addr)), "address")
}

func TestValidateRejectsPostalCode(t *testing.T) {
	for _, code := range []string{"", "123", "12345", "10a1"} {
		addr := validAddress()
		addr.PostalCode = code
		assert.Contains(t, fieldNames(t, Validate(addr)), "postalCode", "postal code %q", code)
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	err := Validate(models.ShippingAddress{})
	names := fieldNames(t, err)
	assert.ElementsMatch(t, []string{
		"firstName", "lastName", "email", "phone", "address", "city", "postalCode",
	}, names)
}

func TestValidationErrorMessage(t *testing.T) {
	addr := validAddress()
	addr.Phone = "123"
	err := Validate(addr)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "phone: phone must be exactly 8 digits", validationErr.Error())
}
