package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
)

// respondError writes the JSON error body for err with the matching status.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if verr, ok := models.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
		return
	}

	status, msg := http.StatusInternalServerError, "Server error."
	switch {
	case errors.Is(err, models.ErrUploadRejected):
		status, msg = http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, models.ErrDuplicateEmail), errors.Is(err, models.ErrDuplicateMobile):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrUploadFailure):
		status, msg = http.StatusBadGateway, "Document storage is unavailable, please try again."
	case errors.Is(err, models.ErrPaymentFailure):
		status, msg = http.StatusBadGateway, "Payment gateway error."
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
