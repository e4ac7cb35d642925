package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		c.Set(middleware.RequestIDKey, requestID)
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext("")

	h.Success(c, gin.H{"name": "exclude"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name   string
		call   func(*gin.Context)
		status int
		code   string
	}{
		{"BadRequest", func(c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(c *gin.Context) { h.NotFound(c, "missing") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"InternalError", func(c *gin.Context) { h.InternalError(c, "oops") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("req-err")
			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-err", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext("req-val")

	h.ValidationError(c, []dto.ValidationDetail{{Field: "product", Message: "This field is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "product", resp.Error.Details[0].Field)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found keeps message",
			err:     shared.NewDomainError("NOT_FOUND", `Product "widget" not found`),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: `Product "widget" not found`,
		},
		{
			name:    "invalid input becomes validation",
			err:     shared.NewDomainError("INVALID_INPUT", "Product name is required"),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeValidation,
			message: "Product name is required",
		},
		{
			name:    "wrapped domain error",
			err:     fmt.Errorf("service: %w", shared.NewDomainError("NOT_FOUND", "gone")),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: "gone",
		},
		{
			name:    "upstream failure is opaque",
			err:     shared.WrapDomainError("UPSTREAM_FAILURE", "sales: pq: password authentication failed", errors.New("pq")),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
		{
			name:    "open breaker is 503",
			err:     shared.WrapDomainError(shared.ErrUnavailable.Code, shared.ErrUnavailable.Message, errors.New("circuit breaker is open")),
			status:  http.StatusServiceUnavailable,
			code:    dto.ErrCodeServiceUnavailable,
			message: "Ledger sources are temporarily unavailable",
		},
		{
			name:    "plain error",
			err:     errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("req-h")
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-h", resp.Error.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext("")

	h.HandleError(c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
