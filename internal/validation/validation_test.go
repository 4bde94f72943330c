package validation_test

import (
	"errors"
	"testing"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Phone string `json:"phone" validate:"required,phone10"`
	Kind  string `json:"kind" validate:"omitempty,oneof=home work other"`
	Qty   int    `json:"quantity" validate:"min=1"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, validation.Struct(sample{Phone: "9876543210", Kind: "work", Qty: 1}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := validation.Struct(sample{Phone: "98765", Kind: "moon", Qty: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	fields := appErr.Fields["errors"].(map[string]string)
	assert.Equal(t, "phone must be exactly 10 digits", fields["phone"])
	assert.Contains(t, fields["kind"], "must be one of")
	assert.Equal(t, "quantity must be at least 1", fields["quantity"])
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validation.ValidPhone("9876543210"))
	assert.False(t, validation.ValidPhone("987654321"))
	assert.False(t, validation.ValidPhone("98765432100"))
	assert.False(t, validation.ValidPhone("98765x3210"))
}
