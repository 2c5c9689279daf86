package handlers

import (
	"errors"
	"net/http"

	"crewops_backend/internal/models"
	"crewops_backend/internal/services"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// JobHandler holds the job service.
type JobHandler struct {
	jobService services.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(js services.JobService) *JobHandler {
	return &JobHandler{jobService: js}
}

// CreateJob handles the creation of a new job under a client.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req services.UpsertJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateJob: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	job, err := h.jobService.CreateJob(req)
	if err != nil {
		utils.LogError(err, "CreateJob: Error from jobService.CreateJob")
		if errors.Is(err, services.ErrClientForJobMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else if errors.Is(err, services.ErrJobValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create job.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJobs handles fetching jobs with filters and pagination.
func (h *JobHandler) GetJobs(c *gin.Context) {
	page, pageSize := paginationParams(c)
	filters := models.JobFilters{
		ClientID: optionalQueryInt64(c, "client_id"),
		Status:   optionalQuery(c, "status"),
		Page:     page,
		PageSize: pageSize,
	}

	jobs, total, err := h.jobService.GetJobs(filters)
	if err != nil {
		utils.LogError(err, "GetJobs: Error from jobService.GetJobs")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch jobs.", "Internal error"))
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      jobs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetJobByID handles fetching a single job by ID.
func (h *JobHandler) GetJobByID(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.GetJobByID(jobID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Job not found.", ""))
		} else {
			utils.LogError(err, "GetJobByID: Error from jobService.GetJobByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch job.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob handles updating an existing job.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpsertJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	job, err := h.jobService.UpdateJob(jobID, req)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Job not found.", ""))
		} else if errors.Is(err, services.ErrClientForJobMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else if errors.Is(err, services.ErrJobValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "UpdateJob: Error from jobService.UpdateJob")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update job.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob handles deleting a job and, through cascades, its shifts.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(jobID); err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Job not found.", ""))
		} else {
			utils.LogError(err, "DeleteJob: Error from jobService.DeleteJob")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete job.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}
