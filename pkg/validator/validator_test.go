package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"schoolName" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phonenumber"`
}

func TestPhoneNumber(t *testing.T) {
	v := New()
	for _, phone := range []string{"0801234", "08012345678", "234801234567890"} {
		assert.NoError(t, v.Struct(sample{Name: "x", Email: "a@b.co", Phone: phone}), phone)
	}
	for _, phone := range []string{"080123", "+2348012345678", "0801 234 5678", "2348012345678901"} {
		assert.Error(t, v.Struct(sample{Name: "x", Email: "a@b.co", Phone: phone}), phone)
	}
}

func TestDescribe(t *testing.T) {
	err := New().Struct(sample{Email: "nope", Phone: "12"})
	require.Error(t, err)

	msg := Describe(err)
	assert.Equal(t, "Missing required fields: schoolName; email must be a valid email address; phone must contain 7 to 15 digits", msg)
	assert.Equal(t, []string{"schoolName", "email", "phone"}, Fields(err))
}
