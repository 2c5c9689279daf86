package handlers

import (
	"errors"
	"net/http"

	"crewops_backend/internal/models"
	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TimesheetHandler holds the timesheet service.
type TimesheetHandler struct {
	timesheetService services.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(ts services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: ts}
}

func respondTimesheetError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrShiftNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
	case errors.Is(err, services.ErrTimesheetNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Timesheet not found.", ""))
	case errors.Is(err, services.ErrUnfinishedWorkers):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodePrecondition, err.Error(), ""))
	case errors.Is(err, services.ErrTimesheetState), errors.Is(err, services.ErrShiftStateChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidState, err.Error(), ""))
	case errors.Is(err, services.ErrApprovalValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.LogError(err, op+": Error from timesheetService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Timesheet operation failed.", "Internal error"))
	}
}

// FinalizeShift submits the shift's worked time for approval.
func (h *TimesheetHandler) FinalizeShift(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.timesheetService.FinalizeShift(actor, shiftID)
	if err != nil {
		respondTimesheetError(c, err, "FinalizeShift")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTimesheetByID fetches one timesheet with its shift details.
func (h *TimesheetHandler) GetTimesheetByID(c *gin.Context) {
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	timesheet, err := h.timesheetService.GetTimesheetByID(timesheetID)
	if err != nil {
		respondTimesheetError(c, err, "GetTimesheetByID")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// GetTimesheetByShift fetches the timesheet belonging to a shift.
func (h *TimesheetHandler) GetTimesheetByShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	timesheet, err := h.timesheetService.GetTimesheetByShift(shiftID)
	if err != nil {
		respondTimesheetError(c, err, "GetTimesheetByShift")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// ListTimesheets fetches timesheets filtered by status and job, paginated.
func (h *TimesheetHandler) ListTimesheets(c *gin.Context) {
	page, pageSize := paginationParams(c)
	filters := models.TimesheetFilters{
		Status:   optionalQuery(c, "status"),
		JobID:    optionalQueryInt64(c, "job_id"),
		Page:     page,
		PageSize: pageSize,
	}

	timesheets, total, err := h.timesheetService.ListTimesheets(filters)
	if err != nil {
		respondTimesheetError(c, err, "ListTimesheets")
		return
	}
	if timesheets == nil {
		timesheets = []models.Timesheet{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      timesheets,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ApproveByClient records the client's sign-off on a submitted timesheet.
func (h *TimesheetHandler) ApproveByClient(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ClientApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	timesheet, err := h.timesheetService.ApproveByClient(actor, timesheetID, req)
	if err != nil {
		respondTimesheetError(c, err, "ApproveByClient")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// ApproveByManager records the manager's approval.
func (h *TimesheetHandler) ApproveByManager(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	// The body is optional; only a signature may be attached.
	var req services.ManagerApprovalRequest
	_ = c.ShouldBindJSON(&req)

	timesheet, err := h.timesheetService.ApproveByManager(actor, timesheetID, req)
	if err != nil {
		respondTimesheetError(c, err, "ApproveByManager")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// FinalApprove completes the approval chain for a timesheet.
func (h *TimesheetHandler) FinalApprove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	timesheet, err := h.timesheetService.FinalApprove(actor, timesheetID)
	if err != nil {
		respondTimesheetError(c, err, "FinalApprove")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// GetShiftAudit returns the audit trail recorded for a shift.
func (h *TimesheetHandler) GetShiftAudit(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.timesheetService.GetShiftAudit(shiftID)
	if err != nil {
		respondTimesheetError(c, err, "GetShiftAudit")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
