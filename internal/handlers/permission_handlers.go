package handlers

import (
	"errors"
	"net/http"

	"crewops_backend/internal/models"
	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PermissionHandler manages delegated crew chief grants.
type PermissionHandler struct {
	permissionService services.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(ps services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: ps}
}

// GrantCrewChief delegates crew-chief authority over a shift or a whole job.
func (h *PermissionHandler) GrantCrewChief(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	grant, err := h.permissionService.GrantCrewChief(actor, req)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		} else if errors.Is(err, services.ErrGrantValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "GrantCrewChief: Error from permissionService.GrantCrewChief")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create grant.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, grant)
}

// RevokeGrant removes a delegated crew chief grant.
func (h *PermissionHandler) RevokeGrant(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	grantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.permissionService.RevokeGrant(actor, grantID); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		} else if errors.Is(err, services.ErrGrantNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Grant not found.", ""))
		} else {
			utils.LogError(err, "RevokeGrant: Error from permissionService.RevokeGrant")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to revoke grant.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Grant revoked successfully"})
}

// ListGrantsForUser returns all grants held by one user.
func (h *PermissionHandler) ListGrantsForUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	grants, err := h.permissionService.ListGrantsForUser(userID)
	if err != nil {
		utils.LogError(err, "ListGrantsForUser: Error from permissionService.ListGrantsForUser")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch grants.", "Internal error"))
		return
	}
	if grants == nil {
		grants = []models.CrewChiefGrant{}
	}
	c.JSON(http.StatusOK, gin.H{"data": grants})
}
