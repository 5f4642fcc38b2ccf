package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name           string
		err            *StandardError
		validateOutput func(t *testing.T, b *BPMNError)
	}{
		{
			name: "validation is thrown without retries",
			err:  NewValidationError("call_id is required"),
			validateOutput: func(t *testing.T, b *BPMNError) {
				assert.Equal(t, "CALL_EVENT_INVALID", b.Code)
				assert.Equal(t, 0, b.Retries)
				assert.False(t, b.Retryable)
			},
		},
		{
			name: "store failure retries",
			err:  NewStoreError("upsert_call", stderrors.New("connection reset")),
			validateOutput: func(t *testing.T, b *BPMNError) {
				assert.Equal(t, "STORE_OPERATION_FAILED", b.Code)
				assert.Equal(t, 3, b.Retries)
				assert.Contains(t, b.Details, "upsert_call")
			},
		},
		{
			name: "metadata becomes error variables",
			err:  NewBusinessNotFoundError("+15551234567").WithMetadata("callId", "call-1"),
			validateOutput: func(t *testing.T, b *BPMNError) {
				vars := b.ToErrorVariables()
				assert.Equal(t, "BUSINESS_NOT_FOUND", vars["errorCode"])
				assert.Equal(t, "call-1", vars["callId"])
				assert.Equal(t, "BUSINESS_NOT_FOUND", vars["originalErrorCode"])
			},
		},
		{
			name: "unmapped code passes through",
			err:  NewInternalError(stderrors.New("boom")),
			validateOutput: func(t *testing.T, b *BPMNError) {
				assert.Equal(t, "INTERNAL_ERROR", b.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, ConvertToBPMNError(tt.err))
		})
	}
}

func TestAsStandard(t *testing.T) {
	assert.Nil(t, AsStandard(nil))

	lockErr := NewLockTimeoutError("call-1", stderrors.New("deadline"))
	wrapped := fmt.Errorf("processing: %w", lockErr)
	assert.Same(t, lockErr, AsStandard(wrapped))

	plain := AsStandard(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreError("find_business", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestDecideJobOutcome(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		expected   JobDecision
	}{
		{name: "non retryable throws", err: NewValidationError("x"), jobRetries: 3, expected: JobDecision{Throw: true}},
		{name: "store error retries", err: NewStoreError("op", stderrors.New("x")), jobRetries: 5, expected: JobDecision{Retries: 3}},
		{name: "capped by job retries", err: NewStoreError("op", stderrors.New("x")), jobRetries: 1, expected: JobDecision{Retries: 1}},
		{name: "no retries left throws", err: NewLockTimeoutError("c", stderrors.New("x")), jobRetries: 0, expected: JobDecision{Throw: true}},
		{name: "notification failure throws", err: NewNotificationSendFailedError("sms", stderrors.New("x")), jobRetries: 3, expected: JobDecision{Throw: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecideJobOutcome(tt.err, tt.jobRetries))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeUnknownEvent))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeBusinessNotFound))
	assert.Equal(t, "STORE", GetErrorCategory(ErrCodeLockTimeout))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeStoreFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeBusinessMismatch))
}
