package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, New(CodeEmptyMessage, "").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, New(CodeUnknownPlan, "").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, New(CodeTokenExpired, "").HTTPStatus)
	assert.Equal(t, http.StatusNotFound, New(CodeConversationNotFound, "").HTTPStatus)
	assert.Equal(t, http.StatusTooManyRequests, New(CodeQuotaExceeded, "").HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, New(CodeLLMCallFailed, "").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, New(CodeDatabaseError, "").HTTPStatus)
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	detailed := ErrQuotaExceeded.WithDetail("daily limit reached")

	assert.Equal(t, "daily limit reached", detailed.Detail)
	assert.Empty(t, ErrQuotaExceeded.Detail, "predefined errors stay pristine")
	assert.Equal(t, ErrQuotaExceeded.Code, detailed.Code)
}

func TestWithErrorDoesNotMutatePredefined(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := ErrLLMCallFailed.WithError(cause)

	assert.ErrorIs(t, wrapped, cause)
	assert.NoError(t, ErrLLMCallFailed.Unwrap())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(cause, CodeDatabaseError, "failed to persist messages")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Contains(t, err.Error(), string(CodeDatabaseError))
}

func TestAsAppError(t *testing.T) {
	appErr := AsAppError(ErrConversationNotFound)
	assert.Equal(t, CodeConversationNotFound, appErr.Code)

	plain := AsAppError(errors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, CodeUnknown, plain.Code)

	assert.True(t, IsAppError(ErrConversationNotFound))
	assert.False(t, IsAppError(errors.New("boom")))
}
