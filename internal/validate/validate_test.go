package validate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	RollNumber string `json:"roll_number" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Internal   string `json:"-" validate:"omitempty,max=2"`
}

func TestStruct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{RollNumber: "001"}))

	err := v.Struct(sample{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{
		{Field: "roll_number", Error: "this field is required"},
		{Field: "email", Error: "email must be a valid email address"},
	}, verr.Fields)
}

func TestValidationErrorAccumulates(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.Err())

	verr.Add("amount", "must be a number")
	err := verr.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: amount: must be a number", err.Error())
}
