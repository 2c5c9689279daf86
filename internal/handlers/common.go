package handlers

import (
	"net/http"
	"strconv"

	"crewops_backend/internal/middleware"
	"crewops_backend/internal/models"
	"crewops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses a path parameter as an int64 ID. On failure it writes a
// 400 response and returns false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", "expected a positive integer"))
		return 0, false
	}
	return id, true
}

// requireActor extracts the authenticated actor set by AuthMiddleware. On
// failure it writes a 401 response and returns false.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing token claims"))
		return models.Actor{}, false
	}
	return actor, true
}

// paginationParams reads page/page_size query parameters with defaults.
func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

// optionalQuery returns a pointer to the query value, or nil when absent.
func optionalQuery(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

// optionalQueryInt64 returns a pointer to the query value parsed as int64,
// or nil when absent or malformed.
func optionalQueryInt64(c *gin.Context, name string) *int64 {
	if v := c.Query(name); v != "" {
		if id, err := utils.StrToInt64(v); err == nil {
			return &id
		}
	}
	return nil
}
