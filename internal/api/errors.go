package api

import (
	"net/http"

	"matching-workers/internal/common/errors"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"requestId,omitempty"`
}

func statusFor(stdErr *errors.StandardError) int {
	switch stdErr.Code {
	case errors.ErrCodeInvalidOptions, errors.ErrCodeInvalidJobRequest, errors.ErrCodePayloadValidationFailed:
		return http.StatusBadRequest
	case errors.ErrCodeJobNotFound, errors.ErrCodeWorkerNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMatchingTimeout, errors.ErrCodeQueryTimeout, errors.ErrCodeSearchTimeout:
		return http.StatusGatewayTimeout
	}
	if stdErr.Retryable {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := statusFor(stdErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", map[string]interface{}{
			"code":      string(stdErr.Code),
			"details":   stdErr.Details,
			"requestId": c.GetString(requestIDKey),
		})
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     stdErr.Message,
		Code:      string(stdErr.Code),
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		RequestID: c.GetString(requestIDKey),
	})
}
