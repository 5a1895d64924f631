package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// blockDayRequest is the payload for blocking or unblocking one day.
type blockDayRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Day    string `json:"day" binding:"required"`
	Reason string `json:"reason"`
}

// blockRangeRequest is the payload for blocking or unblocking a day range.
type blockRangeRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Reason string `json:"reason"`
}

// BlockDay blocks a single day for a caseworker.
// POST /api/v1/blocks.
func (h *Handler) BlockDay(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req blockDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	day, err := h.parseDate(req.Day)
	if err != nil {
		h.badRequest(c, "invalid day, expected YYYY-MM-DD")
		return
	}

	blockage, err := h.blocks.BlockDay(req.UserID, day, req.Reason, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, req.UserID, day)
	c.JSON(http.StatusCreated, gin.H{"blockage": blockage})
}

// UnblockDay removes the blockage for a single day. An optional reason
// restricts removal to a blockage with that exact reason.
// DELETE /api/v1/blocks.
func (h *Handler) UnblockDay(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	var req blockDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	day, err := h.parseDate(req.Day)
	if err != nil {
		h.badRequest(c, "invalid day, expected YYYY-MM-DD")
		return
	}

	removed, err := h.blocks.UnblockDay(req.UserID, day, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlots(c, req.UserID, day)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// BlockRange blocks every business day in an inclusive range.
// POST /api/v1/blocks/range.
func (h *Handler) BlockRange(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req blockRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	start, err := h.parseDate(req.Start)
	if err != nil {
		h.badRequest(c, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := h.parseDate(req.End)
	if err != nil {
		h.badRequest(c, "invalid end date, expected YYYY-MM-DD")
		return
	}

	count, err := h.blocks.BlockRange(req.UserID, start, end, req.Reason, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlotRange(c, req.UserID, start, end)
	c.JSON(http.StatusOK, gin.H{"blocked_days": count})
}

// UnblockRange removes blockages over the business days in an inclusive
// range, optionally filtered by exact reason.
// DELETE /api/v1/blocks/range.
func (h *Handler) UnblockRange(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	var req blockRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	start, err := h.parseDate(req.Start)
	if err != nil {
		h.badRequest(c, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := h.parseDate(req.End)
	if err != nil {
		h.badRequest(c, "invalid end date, expected YYYY-MM-DD")
		return
	}

	count, err := h.blocks.UnblockRange(req.UserID, start, end, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateSlotRange(c, req.UserID, start, end)
	c.JSON(http.StatusOK, gin.H{"removed": count})
}

// GetBlockedDays lists a user's blockages in a date window.
// GET /api/v1/users/:id/blocks?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) GetBlockedDays(c *gin.Context) {
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

	blockages, err := h.blocks.ListInRange(userID, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"blockages": blockages,
		"total":     len(blockages),
	})
}
