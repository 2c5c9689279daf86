package router

import (
	"database/sql"

	"crewops_backend/internal/handlers"
	"crewops_backend/internal/middleware"
	"crewops_backend/internal/repositories"
	"crewops_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	timeEntryRepo := repositories.NewTimeEntryRepository(db)
	timesheetRepo := repositories.NewTimesheetRepository(db)
	grantRepo := repositories.NewGrantRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize Services
	permissionService := services.NewPermissionService(shiftRepo, grantRepo, db)
	authService := services.NewAuthService(authRepo, db)
	clientService := services.NewClientService(clientRepo, db)
	jobService := services.NewJobService(jobRepo, clientRepo, db)
	shiftService := services.NewShiftService(shiftRepo, jobRepo, authRepo, db)
	assignmentService := services.NewAssignmentService(assignmentRepo, timeEntryRepo, shiftRepo, authRepo, permissionService, db)
	timeclockService := services.NewTimeclockService(assignmentRepo, timeEntryRepo, shiftRepo, auditRepo, permissionService, db)
	timesheetService := services.NewTimesheetService(timesheetRepo, assignmentRepo, shiftRepo, auditRepo, permissionService, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	jobHandler := handlers.NewJobHandler(jobService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	timeclockHandler := handlers.NewTimeclockHandler(timeclockService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupEmployeeRoutes(authenticated, authHandler)
		SetupClientRoutes(authenticated, clientHandler)
		SetupJobRoutes(authenticated, jobHandler)
		SetupShiftRoutes(authenticated, shiftHandler, assignmentHandler, timeclockHandler, timesheetHandler)
		SetupTimesheetRoutes(authenticated, timesheetHandler)
		SetupGrantRoutes(authenticated, permissionHandler)
	}
}
