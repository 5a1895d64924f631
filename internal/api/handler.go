// Package api exposes the scheduling services over REST. Authentication is
// outside this system: the surrounding application resolves the caller and
// forwards the actor's user ID in the X-Actor-ID header.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maysotoledo/agenda-epc/internal/cache"
	"github.com/maysotoledo/agenda-epc/internal/service/blocks"
	"github.com/maysotoledo/agenda-epc/internal/service/events"
	"github.com/maysotoledo/agenda-epc/internal/service/vacations"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

const actorHeader = "X-Actor-ID"

// Handler handles scheduling API requests.
type Handler struct {
	events    *events.Service
	blocks    *blocks.Service
	vacations *vacations.Service
	slots     *cache.AvailabilityCache
	location  *time.Location
	log       *logger.Logger
}

// NewHandler creates a new API handler. The availability cache is optional.
func NewHandler(
	eventService *events.Service,
	blockService *blocks.Service,
	vacationService *vacations.Service,
	slotCache *cache.AvailabilityCache,
	location *time.Location,
	log *logger.Logger,
) *Handler {
	return &Handler{
		events:    eventService,
		blocks:    blockService,
		vacations: vacationService,
		slots:     slotCache,
		location:  location,
		log:       log,
	}
}

// actorID extracts the acting user from the request, aborting with 401 when
// the header is missing or malformed.
func (h *Handler) actorID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader(actorHeader)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "missing or invalid " + actorHeader + " header",
			"timestamp": time.Now().UTC(),
		})
		return 0, false
	}
	return uint(id), true
}

// parseID extracts a positive numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return uint(id), nil
}

// parseDate parses a YYYY-MM-DD value in the calendar timezone.
func (h *Handler) parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, h.location)
}
