package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"exercise-tracker/internal/domain"
	"exercise-tracker/internal/service"
)

// bindingError tags request decoding and schema failures as validation errors.
func bindingError(err error) error {
	return domain.NewValidationError("%s", err.Error())
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrExportsDisabled) {
		return http.StatusServiceUnavailable
	}
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	entry := h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"status":     status,
		"kind":       domain.KindOf(err).String(),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Info(err.Error())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
