package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maysotoledo/agenda-epc/internal/domain"
)

// statusForKind maps the scheduling failure taxonomy to HTTP status codes.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidRange, domain.KindCrossesYearBoundary:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindSlotTaken,
		domain.KindAlreadyCancelled,
		domain.KindNotCancelled,
		domain.KindSelfOverlap,
		domain.KindRoleCollision,
		domain.KindPeriodLimitExceeded,
		domain.KindAnnualQuotaExceeded:
		return http.StatusConflict
	case domain.KindUnschedulableDay:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends a structured error response. Domain errors expose their
// kind and any numeric context; anything else is an opaque 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		payload := gin.H{
			"error":     de.Message,
			"kind":      de.Kind,
			"timestamp": time.Now().UTC(),
		}
		if de.Kind == domain.KindAnnualQuotaExceeded {
			payload["days_used"] = de.DaysUsed
			payload["days_remaining"] = de.DaysRemaining
		}
		c.JSON(statusForKind(de.Kind), payload)
		return
	}

	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":     "internal error",
		"timestamp": time.Now().UTC(),
	})
}

// badRequest sends a plain 400 for malformed input.
func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
