package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/middleware"
	"pharmaproc/pkg/response"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Internal failures are logged and
// their message is not sent to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	c.JSON(status, response.Error(status, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, message))
}
