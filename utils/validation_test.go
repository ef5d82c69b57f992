package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name   string `validate:"required,max=10"`
	Action string `validate:"required,oneof=AUTO_ACCEPT AUTO_REJECT"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(sampleRequest{Name: "ok", Action: "AUTO_ACCEPT"})
	assert.NoError(t, err)
}

func TestValidateStruct_FieldErrors(t *testing.T) {
	err := ValidateStruct(sampleRequest{Action: "MAYBE"})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fields := GetValidationFields(err)
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Action")
	assert.Contains(t, fields["Action"], "one of")
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("3e3f1e61-40bb-4c03-9d3f-6f6a6f0a8f10"))
	assert.Error(t, ValidateUUID("not-a-uuid"))
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern(`^(ls|cat|pwd|echo)`))
	assert.NoError(t, ValidatePattern(`rm\s+-rf\s+/`))
	assert.Error(t, ValidatePattern(`(unbalanced`))
	assert.Error(t, ValidatePattern(`a{2,1}`))
}
