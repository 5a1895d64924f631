package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maysotoledo/agenda-epc/internal/calendar"
	"github.com/maysotoledo/agenda-epc/internal/service/events"
)

// createEventRequest is the payload for booking a slot.
type createEventRequest struct {
	UserID      uint      `json:"user_id" binding:"required"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	SubjectName string    `json:"subject_name" binding:"required"`
	CaseNumber  string    `json:"case_number" binding:"required"`
}

// editEventRequest is the payload for rescheduling or updating an event.
type editEventRequest struct {
	StartsAt    *time.Time `json:"starts_at"`
	SubjectName *string    `json:"subject_name"`
	CaseNumber  *string    `json:"case_number"`
}

// setStatusRequest is the payload for recording an event outcome.
type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// CreateEvent books a new appointment.
// POST /api/v1/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	event, err := h.events.Create(events.CreateInput{
		UserID:      req.UserID,
		StartsAt:    req.StartsAt.In(h.location),
		SubjectName: req.SubjectName,
		CaseNumber:  req.CaseNumber,
	}, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, event.UserID, event.StartsAt)
	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// EditEvent reschedules an event or updates its subject fields.
// PUT /api/v1/events/:id.
func (h *Handler) EditEvent(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	eventID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	var req editEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	input := events.EditInput{
		SubjectName: req.SubjectName,
		CaseNumber:  req.CaseNumber,
	}
	if req.StartsAt != nil {
		local := req.StartsAt.In(h.location)
		input.StartsAt = &local
	}

	before, err := h.events.Get(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	event, err := h.events.Edit(eventID, input, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, event.UserID, before.StartsAt)
	h.invalidateSlots(c, event.UserID, event.StartsAt)
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// CancelEvent soft-cancels an appointment, freeing its slot.
// DELETE /api/v1/events/:id.
func (h *Handler) CancelEvent(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	eventID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	before, err := h.events.Get(eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.events.Cancel(eventID, actor); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, before.UserID, before.StartsAt)
	c.Status(http.StatusNoContent)
}

// RestoreEvent brings a cancelled appointment back.
// POST /api/v1/events/:id/restore.
func (h *Handler) RestoreEvent(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	eventID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	event, err := h.events.Restore(eventID, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, event.UserID, event.StartsAt)
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// SetEventStatus records the caseworker's outcome for an appointment.
// PUT /api/v1/events/:id/status.
func (h *Handler) SetEventStatus(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	eventID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	event, err := h.events.SetStatus(eventID, req.Status, req.Reason, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// GetAgenda lists a user's active events in a date window.
// GET /api/v1/users/:id/agenda?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) GetAgenda(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	userID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	from, err := h.parseDate(c.Query("from"))
	if err != nil {
		h.badRequest(c, "invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := h.parseDate(c.Query("to"))
	if err != nil {
		h.badRequest(c, "invalid to date, expected YYYY-MM-DD")
		return
	}

	list, err := h.events.ListAgenda(userID, from, to.AddDate(0, 0, 1))
	if err != nil {
		h.respondError(c, err)
		return
	}

	activeTotal, err := h.events.ActiveCount(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"events":       list,
		"total":        len(list),
		"active_total": activeTotal,
	})
}

// GetFreeSlots returns the bookable hours of a user's day, served from the
// availability cache when fresh.
// GET /api/v1/users/:id/slots?date=YYYY-MM-DD.
func (h *Handler) GetFreeSlots(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	userID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	day, err := h.parseDate(c.Query("date"))
	if err != nil {
		h.badRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}
	day = calendar.DayOf(day)

	if h.slots != nil {
		if hours, found, err := h.slots.Get(c.Request.Context(), userID, day); err == nil && found {
			c.JSON(http.StatusOK, slotsResponse(userID, day, hours, true))
			return
		}
	}

	hours, err := h.events.FreeSlots(userID, day)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.slots != nil {
		if err := h.slots.Set(c.Request.Context(), userID, day, hours); err != nil {
			h.log.Warn().Err(err).Msg("Failed to populate availability cache")
		}
	}

	c.JSON(http.StatusOK, slotsResponse(userID, day, hours, false))
}

func slotsResponse(userID uint, day time.Time, hours []int, cached bool) gin.H {
	labels := make([]string, 0, len(hours))
	for _, hour := range hours {
		labels = append(labels, calendar.SlotLabel(hour))
	}
	return gin.H{
		"user_id": userID,
		"date":    day.Format("2006-01-02"),
		"slots":   labels,
		"cached":  cached,
	}
}

// invalidateSlots drops the cached availability of the affected day.
func (h *Handler) invalidateSlots(c *gin.Context, userID uint, at time.Time) {
	if h.slots == nil {
		return
	}
	h.slots.Invalidate(c.Request.Context(), userID, calendar.DayOf(at))
}

// invalidateSlotRange drops the cached availability of every business day
// in [start, end]; weekend entries never change.
func (h *Handler) invalidateSlotRange(c *gin.Context, userID uint, start, end time.Time) {
	if h.slots == nil {
		return
	}
	for _, day := range calendar.BusinessDaysBetween(start, end) {
		h.slots.Invalidate(c.Request.Context(), userID, day)
	}
}
