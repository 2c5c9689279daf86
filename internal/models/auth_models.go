package models

import "time"

// User roles. Unlike the usual role/permission join-table design, the
// permission model here is a flat role plus shift-scoped crew chief grants,
// which is all the lifecycle guard needs.
const (
	RoleAdmin     = "Admin"
	RoleManager   = "Manager"
	RoleCrewChief = "CrewChief"
	RoleEmployee  = "Employee"
)

// IsValidRole reports whether the given role name is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCrewChief, RoleEmployee:
		return true
	}
	return false
}

// User represents a user in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Actor identifies the authenticated user performing an operation.
// Built from JWT claims by the handlers and passed down to the services so
// permission checks and audit records never reach back into the gin context.
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

// IsManagement reports whether the actor may bypass shift-level permission checks.
func (a Actor) IsManagement() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// Credentials for login request.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
