package httpapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidator(t *testing.T) {
	v := newRequestValidator()

	assert.NoError(t, v.Validate(&reserveRequest{TutorID: "t1"}))
	assert.NoError(t, v.Validate(&reviewRequest{}))

	err := v.Validate(&reserveRequest{})
	require.Error(t, err)
	assert.Equal(t, "tutor_id is required", validationMessage(err))

	err = v.Validate(&subjectRequest{SubjectID: -3})
	require.Error(t, err)
	assert.Equal(t, "subject_id is invalid", validationMessage(err))

	yes := true
	assert.NoError(t, v.Validate(&availabilityRequest{Available: &yes}))
	err = v.Validate(&availabilityRequest{})
	require.Error(t, err)
	assert.Equal(t, "available is required", validationMessage(err))
}

func TestValidationMessageFallback(t *testing.T) {
	assert.Equal(t, "invalid request body", validationMessage(errors.New("boom")))
}
