package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingDocumentsError_ListsEveryTag(t *testing.T) {
	err := NewMissingDocumentsError([]string{"PAN_CARD_MEMBER", "PAN_CARD_NOMINEE"})

	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Equal(t, "Missing required documents: PAN_CARD_MEMBER, PAN_CARD_NOMINEE", err.Error())
	assert.False(t, err.Retryable)
}

func TestNormalize_WrapsForeignErrors(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "boom", stdErr.Details)

	assert.Nil(t, Normalize(nil))
}

func TestCodeOf_FindsWrappedStandardError(t *testing.T) {
	inner := NewNoStrategyFoundError("SPACE_TRAVEL_PERMIT")
	wrapped := fmt.Errorf("resolve: %w", inner)

	assert.Equal(t, ErrCodeNoStrategyFound, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeNoStrategyFound))
	assert.False(t, IsCode(nil, ErrCodeNoStrategyFound))
	assert.True(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeNoStrategyFound}))
	assert.Contains(t, wrapped.Error(), "SPACE_TRAVEL_PERMIT")
}

func TestDraftingError_UnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewDraftingError("MOA", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "Failed to draft MOA: disk full", err.Error())
}

func TestToErrorVariables_IncludesMetadata(t *testing.T) {
	err := NewNotFoundError("application", "ABC123")
	vars := err.ToErrorVariables()

	assert.Equal(t, "NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "ABC123", vars["id"])
	assert.Equal(t, false, vars["retryable"])
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeNotFound, "LOOKUP"},
		{ErrCodeNoStrategyFound, "DISPATCH"},
		{ErrCodeValidationFailed, "VALIDATION"},
		{ErrCodeInvalidInput, "VALIDATION"},
		{ErrCodeDraftingFailed, "DRAFTING"},
		{ErrCodeQualityCheck, "DRAFTING"},
		{ErrCodeStorageFailed, "STORAGE"},
		{ErrCodeBroker, "INFRASTRUCTURE"},
		{ErrCodeParseError, "VALIDATION"},
		{ErrCodeInternal, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}
