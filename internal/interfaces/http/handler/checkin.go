package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/physiomanager/backend/internal/application/clinic"
)

// CheckInHandler handles daily attendance endpoints
type CheckInHandler struct {
	BaseHandler
	checkInService *clinic.CheckInService
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(checkInService *clinic.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckIn records an attended or cancelled session for a patient.
// A second log for the same patient and date is rejected.
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req clinic.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.checkInService.CheckIn(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Roster returns the patients scheduled for a date alongside any logs
// already recorded for it. Defaults to today when no date is given.
func (h *CheckInHandler) Roster(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	roster, err := h.checkInService.Roster(c.Request.Context(), tenantID, c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, roster)
}
