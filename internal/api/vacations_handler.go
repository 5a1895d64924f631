package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// vacationRequest is the payload for creating or editing a vacation period.
// Either quantity_days or end_date must be given.
type vacationRequest struct {
	UserID       uint   `json:"user_id" binding:"required"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date"`
	QuantityDays int    `json:"quantity_days"`
}

func (h *Handler) normalizeVacationRequest(c *gin.Context, req *vacationRequest) (start, end time.Time, ok bool) {
	start, err := h.parseDate(req.StartDate)
	if err != nil {
		h.badRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}

	if req.EndDate != "" {
		end, err = h.parseDate(req.EndDate)
		if err != nil {
			h.badRequest(c, "invalid end_date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
	}

	normalized, err := h.vacations.Propose(start, req.QuantityDays, end)
	if err != nil {
		h.respondError(c, err)
		return time.Time{}, time.Time{}, false
	}
	return normalized.StartDate, normalized.EndDate, true
}

// CreateVacation validates and registers a new vacation period.
// POST /api/v1/vacations.
func (h *Handler) CreateVacation(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req vacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	start, end, ok := h.normalizeVacationRequest(c, &req)
	if !ok {
		return
	}

	period, err := h.vacations.Create(req.UserID, start, end, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vacation": period})
}

// EditVacation validates and updates an existing vacation period.
// PUT /api/v1/vacations/:id.
func (h *Handler) EditVacation(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	periodID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	var req vacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	start, end, ok := h.normalizeVacationRequest(c, &req)
	if !ok {
		return
	}

	period, err := h.vacations.Edit(periodID, req.UserID, start, end, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vacation": period})
}

// DeleteVacation removes a vacation period.
// DELETE /api/v1/vacations/:id.
func (h *Handler) DeleteVacation(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	periodID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if err := h.vacations.Delete(periodID, actor); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetVacations lists a user's vacation periods, optionally for one year.
// GET /api/v1/users/:id/vacations?year=2025.
func (h *Handler) GetVacations(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	userID, err := h.parseID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if rawYear := c.Query("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			h.badRequest(c, "invalid year")
			return
		}
		periods, err := h.vacations.ListForYear(userID, year)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "year": year, "vacations": periods, "total": len(periods)})
		return
	}

	periods, err := h.vacations.ListByUser(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "vacations": periods, "total": len(periods)})
}
