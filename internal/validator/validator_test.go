package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneFixture struct {
	Phone string `json:"phone_number" validate:"required,kenyan_phone"`
}

func TestKenyanPhoneRule(t *testing.T) {
	v := New()

	valid := []string{
		"0712345678",
		"0112345678",
		"712345678",
		"254712345678",
		"+254712345678",
	}
	for _, phone := range valid {
		assert.NoError(t, v.Validate(&phoneFixture{Phone: phone}), "phone %q", phone)
	}

	invalid := []string{
		"12345",
		"07123456789",
		"25471234567",
		"0712 345 678x",
		"871234567",
	}
	for _, phone := range invalid {
		assert.Error(t, v.Validate(&phoneFixture{Phone: phone}), "phone %q", phone)
	}
}

type enumFixture struct {
	Role     string `json:"role" validate:"omitempty,is-user-role"`
	Interval string `json:"interval" validate:"omitempty,is-plan-interval"`
	Method   string `json:"payment_method" validate:"omitempty,is-payment-method"`
	Status   string `json:"status" validate:"omitempty,is-transaction-status"`
}

func TestEnumRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&enumFixture{
		Role:     "admin",
		Interval: "monthly",
		Method:   "mpesa",
		Status:   "pending",
	}))
	assert.NoError(t, v.Validate(&enumFixture{}))

	assert.Error(t, v.Validate(&enumFixture{Role: "superuser"}))
	assert.Error(t, v.Validate(&enumFixture{Interval: "weekly"}))
	assert.Error(t, v.Validate(&enumFixture{Method: "cash"}))
	assert.Error(t, v.Validate(&enumFixture{Status: "reversed"}))
}

func TestValidationErrorUsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&phoneFixture{Phone: ""})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "phone_number")
	assert.Equal(t, "This field is required", vErr.Errors["phone_number"])
}
