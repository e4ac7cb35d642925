package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeValidation},
		{"UPSTREAM_FAILURE", ErrCodeInternal},
		{"SERVICE_UNAVAILABLE", ErrCodeServiceUnavailable},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeBadRequest, ErrCodeBadRequest},
		{"CUSTOM_ERROR", ErrCodeUnknown},
		{"", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestErrorCodesAreMapped(t *testing.T) {
	for code, status := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), "code %s should start with ERR_", code)
		assert.GreaterOrEqual(t, status, 400)
	}
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "mapping for %s targets unmapped code %s", domainCode, apiCode)
	}
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(ErrCodeInternal))
	assert.True(t, IsServerError(ErrCodeServiceUnavailable))
	assert.True(t, IsServerError("SOMETHING_ELSE"))
	assert.False(t, IsServerError(ErrCodeNotFound))
	assert.False(t, IsServerError(ErrCodeValidation))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", PublicMessage(ErrCodeInternal))
	assert.Equal(t, "Ledger sources are temporarily unavailable", PublicMessage(ErrCodeServiceUnavailable))
}

func TestErrorResponseJSON(t *testing.T) {
	t.Run("carries request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Product not found", "req-1")

		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, false, decoded["success"])
		assert.NotContains(t, decoded, "data")

		errObj := decoded["error"].(map[string]any)
		assert.Equal(t, ErrCodeNotFound, errObj["code"])
		assert.Equal(t, "Product not found", errObj["message"])
		assert.Equal(t, "req-1", errObj["request_id"])
		assert.NotContains(t, errObj, "details")
	})

	t.Run("validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Invalid query", "req-2", []ValidationDetail{
			{Field: "supplier_id", Message: "must be a valid UUID"},
		})

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-2", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "supplier_id", resp.Error.Details[0].Field)
		assert.Equal(t, "must be a valid UUID", resp.Error.Details[0].Message)
	})

	t.Run("success omits error", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponse([]string{"exclude"}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":["exclude"]}`, string(raw))
	})
}
