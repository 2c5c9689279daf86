package handlers

import (
	"errors"
	"net/http"
	"time"

	"crewops_backend/internal/models"
	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ShiftHandler holds the shift service.
type ShiftHandler struct {
	shiftService services.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: ss}
}

func respondShiftError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrShiftNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
	case errors.Is(err, services.ErrJobForShiftMissing):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Job not found.", err.Error()))
	case errors.Is(err, services.ErrCrewChiefNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Crew chief not found.", err.Error()))
	case errors.Is(err, services.ErrShiftValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrShiftStateChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidState, err.Error(), ""))
	default:
		utils.LogError(err, op+": Error from shiftService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Shift operation failed.", "Internal error"))
	}
}

// CreateShift handles the creation of a new shift under a job.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req services.UpsertShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateShift: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.CreateShift(req)
	if err != nil {
		respondShiftError(c, err, "CreateShift")
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// GetShifts handles fetching shifts with filters and pagination.
func (h *ShiftHandler) GetShifts(c *gin.Context) {
	page, pageSize := paginationParams(c)
	filters := models.ShiftFilters{
		JobID:       optionalQueryInt64(c, "job_id"),
		CrewChiefID: optionalQueryInt64(c, "crew_chief_id"),
		Status:      optionalQuery(c, "status"),
		Page:        page,
		PageSize:    pageSize,
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &t
		}
	}

	shifts, total, err := h.shiftService.GetShifts(filters)
	if err != nil {
		utils.LogError(err, "GetShifts: Error from shiftService.GetShifts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shifts.", "Internal error"))
		return
	}
	if shifts == nil {
		shifts = []models.Shift{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      shifts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetShiftByID handles fetching a single shift by ID.
func (h *ShiftHandler) GetShiftByID(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shift, err := h.shiftService.GetShiftByID(shiftID)
	if err != nil {
		respondShiftError(c, err, "GetShiftByID")
		return
	}
	c.JSON(http.StatusOK, shift)
}

// UpdateShift handles updating an existing shift.
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpsertShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.UpdateShift(shiftID, req)
	if err != nil {
		respondShiftError(c, err, "UpdateShift")
		return
	}
	c.JSON(http.StatusOK, shift)
}

// CancelShift marks a shift cancelled without deleting its records.
func (h *ShiftHandler) CancelShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shift, err := h.shiftService.CancelShift(shiftID)
	if err != nil {
		respondShiftError(c, err, "CancelShift")
		return
	}
	c.JSON(http.StatusOK, shift)
}

// DeleteShift permanently removes a shift with all its assignments and time
// entries. Requires ?confirm=true to guard against accidental cascades.
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest,
			"Deleting a shift removes all of its assignments and time entries. Repeat the request with ?confirm=true.", ""))
		return
	}

	if err := h.shiftService.DeleteShift(shiftID); err != nil {
		respondShiftError(c, err, "DeleteShift")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift deleted successfully"})
}
