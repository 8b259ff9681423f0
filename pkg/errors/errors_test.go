package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewExternalError("emergency feed unavailable", errors.New("connection refused"))
	assert.Equal(t, "EXTERNAL: emergency feed unavailable: connection refused", err.Error())

	plain := NewValidationError("lat and lon parameters are required")
	assert.Equal(t, "VALIDATION: lat and lon parameters are required", plain.Error())
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	inner := NewDataUnavailableError("registry unavailable", nil)
	wrapped := fmt.Errorf("search hospitals: %w", inner)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Same(t, inner, appErr)
	assert.True(t, IsType(wrapped, ErrorTypeDataUnavailable))
	assert.False(t, IsType(wrapped, ErrorTypeExternal))
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
	assert.False(t, IsType(nil, ErrorTypeInternal))
}
