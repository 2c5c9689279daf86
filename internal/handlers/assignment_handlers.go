package handlers

import (
	"errors"
	"net/http"

	"crewops_backend/internal/models"
	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler holds the assignment service.
type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(as services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: as}
}

func respondAssignmentError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrShiftNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
	case errors.Is(err, services.ErrAssignmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Assignment not found.", ""))
	case errors.Is(err, services.ErrEmployeeNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", ""))
	case errors.Is(err, services.ErrDuplicateAssignment):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrAssignmentHasEntries):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrShiftStateChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidState, err.Error(), ""))
	case errors.Is(err, services.ErrAssignmentValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.LogError(err, op+": Error from assignmentService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Assignment operation failed.", "Internal error"))
	}
}

// AssignWorker places a worker on a shift. With assignment_id in the body it
// fills the named placeholder slot; without it a new assignment row is
// created (employee_id omitted creates an unfilled placeholder).
func (h *AssignmentHandler) AssignWorker(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AssignWorker: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if req.AssignmentID != nil {
		if req.EmployeeID == nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "employee_id is required when filling an existing slot.", ""))
			return
		}
		assignment, err := h.assignmentService.ReassignWorker(actor, *req.AssignmentID, services.ReassignWorkerRequest{EmployeeID: *req.EmployeeID})
		if err != nil {
			respondAssignmentError(c, err, "AssignWorker")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "assignment": assignment})
		return
	}

	assignment, err := h.assignmentService.AssignWorker(actor, shiftID, req)
	if err != nil {
		respondAssignmentError(c, err, "AssignWorker")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "assignment": assignment})
}

// ReassignWorker swaps the worker on an assignment or fills a placeholder.
func (h *AssignmentHandler) ReassignWorker(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}
	var req services.ReassignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.assignmentService.ReassignWorker(actor, assignmentID, req)
	if err != nil {
		respondAssignmentError(c, err, "ReassignWorker")
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// UnassignWorker removes a worker from a shift. Refused with 409 once the
// assignment has time entries.
func (h *AssignmentHandler) UnassignWorker(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.assignmentService.UnassignWorker(actor, assignmentID); err != nil {
		respondAssignmentError(c, err, "UnassignWorker")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetShiftRoster returns the shift's assignments with workers and time entries.
func (h *AssignmentHandler) GetShiftRoster(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	roster, err := h.assignmentService.GetShiftRoster(shiftID)
	if err != nil {
		respondAssignmentError(c, err, "GetShiftRoster")
		return
	}
	if roster == nil {
		roster = []models.Assignment{}
	}
	c.JSON(http.StatusOK, gin.H{"data": roster})
}
