package router

import (
	"crewops_backend/internal/handlers"
	"crewops_backend/internal/middleware"
	"crewops_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.Refresh)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetProfile)
			authRequiredRoutes.POST("/logout", authHandler.Logout)
		}
	}
}

// SetupEmployeeRoutes sets up user directory routes.
func SetupEmployeeRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	employeeRoutes := authenticatedGroup.Group("/employees")
	{
		employeeRoutes.GET("", authHandler.ListEmployees)
	}
}

// SetupClientRoutes sets up the staffing client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)
	}
}

// SetupJobRoutes sets up the job routes.
func SetupJobRoutes(authenticatedGroup *gin.RouterGroup, jobHandler *handlers.JobHandler) {
	jobRoutes := authenticatedGroup.Group("/jobs")
	{
		jobRoutes.GET("", jobHandler.GetJobs)
		jobRoutes.GET("/:id", jobHandler.GetJobByID)

		managementRoutes := jobRoutes.Group("")
		managementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managementRoutes.POST("", jobHandler.CreateJob)
			managementRoutes.PUT("/:id", jobHandler.UpdateJob)
			managementRoutes.DELETE("/:id", jobHandler.DeleteJob)
		}
	}
}

// SetupShiftRoutes sets up shift CRUD plus the roster and lifecycle routes.
// Lifecycle actions are open to any authenticated user; the permission
// service decides per shift whether the actor may act on it.
func SetupShiftRoutes(
	authenticatedGroup *gin.RouterGroup,
	shiftHandler *handlers.ShiftHandler,
	assignmentHandler *handlers.AssignmentHandler,
	timeclockHandler *handlers.TimeclockHandler,
	timesheetHandler *handlers.TimesheetHandler,
) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	{
		shiftRoutes.GET("", shiftHandler.GetShifts)
		shiftRoutes.GET("/:id", shiftHandler.GetShiftByID)
		shiftRoutes.GET("/:id/roster", assignmentHandler.GetShiftRoster)
		shiftRoutes.GET("/:id/timesheet", timesheetHandler.GetTimesheetByShift)
		shiftRoutes.GET("/:id/audit", timesheetHandler.GetShiftAudit)

		managementRoutes := shiftRoutes.Group("")
		managementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managementRoutes.POST("", shiftHandler.CreateShift)
			managementRoutes.PUT("/:id", shiftHandler.UpdateShift)
			managementRoutes.POST("/:id/cancel", shiftHandler.CancelShift)
			managementRoutes.DELETE("/:id", shiftHandler.DeleteShift)
		}

		// Roster management
		shiftRoutes.POST("/:id/assign-worker", assignmentHandler.AssignWorker)
		shiftRoutes.PUT("/:id/assigned/:assignmentId", assignmentHandler.ReassignWorker)
		shiftRoutes.DELETE("/:id/assigned/:assignmentId", assignmentHandler.UnassignWorker)

		// Timeclock lifecycle; worker_id travels in the request body
		shiftRoutes.POST("/:id/clock-in", timeclockHandler.ClockIn)
		shiftRoutes.POST("/:id/clock-out", timeclockHandler.ClockOut)
		shiftRoutes.POST("/:id/end-shift", timeclockHandler.EndShift)
		shiftRoutes.POST("/:id/no-show", timeclockHandler.MarkNoShow)
		shiftRoutes.POST("/:id/clock-out-all", timeclockHandler.ClockOutAll)
		shiftRoutes.POST("/:id/end-all-shifts", timeclockHandler.EndAllShifts)
		shiftRoutes.POST("/:id/finalize-timesheet", timesheetHandler.FinalizeShift)
	}
}

// SetupTimesheetRoutes sets up the timesheet listing and approval routes.
func SetupTimesheetRoutes(authenticatedGroup *gin.RouterGroup, timesheetHandler *handlers.TimesheetHandler) {
	timesheetRoutes := authenticatedGroup.Group("/timesheets")
	{
		timesheetRoutes.GET("", timesheetHandler.ListTimesheets)
		timesheetRoutes.GET("/:id", timesheetHandler.GetTimesheetByID)

		// Client approval is recorded by a staff member on the client's
		// behalf; managers and admins only for the later stages.
		timesheetRoutes.POST("/:id/approve-client", timesheetHandler.ApproveByClient)

		managementRoutes := timesheetRoutes.Group("")
		managementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managementRoutes.POST("/:id/approve-manager", timesheetHandler.ApproveByManager)
			managementRoutes.POST("/:id/approve-final", timesheetHandler.FinalApprove)
		}
	}
}

// SetupGrantRoutes sets up the crew chief grant routes.
func SetupGrantRoutes(authenticatedGroup *gin.RouterGroup, permissionHandler *handlers.PermissionHandler) {
	grantRoutes := authenticatedGroup.Group("/grants")
	{
		grantRoutes.GET("/user/:userId", permissionHandler.ListGrantsForUser)

		managementRoutes := grantRoutes.Group("")
		managementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managementRoutes.POST("", permissionHandler.GrantCrewChief)
			managementRoutes.DELETE("/:id", permissionHandler.RevokeGrant)
		}
	}
}
