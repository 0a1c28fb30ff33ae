// Package handler holds the console API's gin handlers. Handlers translate
// HTTP requests into screen workflows and wrap the resulting view models
// in dto.Response.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/logger"
	"github.com/erp/console/internal/infrastructure/printing"
	"github.com/erp/console/internal/interfaces/http/dto"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers
type BaseHandler struct{}

// Success sends a 200 success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Outcome sends a workflow outcome. Failed outcomes that carry field
// errors are 422; other failures are reported with status.
func (h *BaseHandler) Outcome(c *gin.Context, data any, out view.Outcome, failStatus int) {
	status := http.StatusOK
	if !out.OK {
		status = failStatus
		if len(out.Errors) > 0 {
			status = http.StatusUnprocessableEntity
		}
	}
	c.JSON(status, dto.FromOutcome(data, out))
}

// Error sends an error response with the request ID attached
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// HandleError maps err onto a response. Server messages from the remote
// API are passed through verbatim; anything unrecognized is a 500 with a
// generic message and the detail goes to the log.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var (
		domainErr *shared.DomainError
		apiErr    *apiclient.APIError
		renderErr *printing.RenderError
	)
	switch {
	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		code := dto.ErrCodeUpstream
		switch {
		case status == http.StatusNotFound:
			code = dto.ErrCodeNotFound
		case status == http.StatusUnauthorized:
			code = dto.ErrCodeUnauthorized
		case status == http.StatusForbidden:
			code = dto.ErrCodeForbidden
		case status >= 400 && status < 500:
			code = dto.ErrCodeInvalidInput
		default:
			status = http.StatusBadGateway
		}
		h.Error(c, status, code, apiclient.MessageOr(err, "The server rejected the request"))
	case errors.As(err, &renderErr):
		logger.L(c.Request.Context()).Error("render failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeRenderFailed, "The document could not be rendered")
	default:
		logger.L(c.Request.Context()).Error("request failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}
