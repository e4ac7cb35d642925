package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError converts err into the error envelope. Client errors keep the
// domain message; server errors are logged and answered with a fixed message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code := dto.ErrCodeInternal
	message := ""
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = dto.NormalizeErrorCode(domainErr.Code)
		message = domainErr.Message
	}

	if dto.IsServerError(code) {
		logger.FromContextOr(c.Request.Context(), zap.L()).Error("Request failed",
			zap.String("code", code),
			zap.Error(err),
		)
		message = dto.PublicMessage(code)
	}

	h.Error(c, dto.GetHTTPStatus(code), code, message)
}
