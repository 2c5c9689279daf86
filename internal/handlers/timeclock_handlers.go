package handlers

import (
	"errors"
	"net/http"

	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TimeclockHandler holds the timeclock service.
type TimeclockHandler struct {
	timeclockService services.TimeclockService
}

// NewTimeclockHandler creates a new TimeclockHandler.
func NewTimeclockHandler(ts services.TimeclockService) *TimeclockHandler {
	return &TimeclockHandler{timeclockService: ts}
}

// workerRequest identifies the worker a per-worker clock action targets.
type workerRequest struct {
	WorkerID int64 `json:"worker_id" binding:"required"`
}

func respondTimeclockError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrShiftNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
	case errors.Is(err, services.ErrWorkerNotAssigned):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrAlreadyClockedIn),
		errors.Is(err, services.ErrEntryLimitReached):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrNoActiveEntry),
		errors.Is(err, services.ErrNoShowAfterClockIn),
		errors.Is(err, services.ErrAssignmentClosed),
		errors.Is(err, services.ErrShiftStateChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidState, err.Error(), ""))
	default:
		utils.LogError(err, op+": Error from timeclockService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Timeclock operation failed.", "Internal error"))
	}
}

func (h *TimeclockHandler) shiftAndWorker(c *gin.Context) (int64, int64, bool) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return 0, 0, false
	}
	var req workerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorkerID <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: worker_id is required.", "expected {\"worker_id\": <id>}"))
		return 0, 0, false
	}
	return shiftID, req.WorkerID, true
}

// ClockIn opens a new time entry for a worker on a shift.
func (h *TimeclockHandler) ClockIn(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, workerID, ok := h.shiftAndWorker(c)
	if !ok {
		return
	}

	entry, err := h.timeclockService.ClockIn(actor, shiftID, workerID)
	if err != nil {
		respondTimeclockError(c, err, "ClockIn")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// ClockOut closes the worker's open time entry.
func (h *TimeclockHandler) ClockOut(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, workerID, ok := h.shiftAndWorker(c)
	if !ok {
		return
	}

	entry, err := h.timeclockService.ClockOut(actor, shiftID, workerID)
	if err != nil {
		respondTimeclockError(c, err, "ClockOut")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// ClockOutAll closes every open time entry on the shift.
func (h *TimeclockHandler) ClockOutAll(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.timeclockService.ClockOutAll(actor, shiftID)
	if err != nil {
		respondTimeclockError(c, err, "ClockOutAll")
		return
	}
	c.JSON(http.StatusOK, result)
}

// EndShift finishes a single worker's shift.
func (h *TimeclockHandler) EndShift(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, workerID, ok := h.shiftAndWorker(c)
	if !ok {
		return
	}

	assignment, err := h.timeclockService.EndShift(actor, shiftID, workerID)
	if err != nil {
		respondTimeclockError(c, err, "EndShift")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
}

// EndAllShifts finishes every remaining worker on the shift in one batch.
func (h *TimeclockHandler) EndAllShifts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.timeclockService.EndAllShifts(actor, shiftID)
	if err != nil {
		respondTimeclockError(c, err, "EndAllShifts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ended_count": result.EndedCount})
}

// MarkNoShow records that a worker never arrived for the shift.
func (h *TimeclockHandler) MarkNoShow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, workerID, ok := h.shiftAndWorker(c)
	if !ok {
		return
	}

	assignment, err := h.timeclockService.MarkNoShow(actor, shiftID, workerID)
	if err != nil {
		respondTimeclockError(c, err, "MarkNoShow")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
}
