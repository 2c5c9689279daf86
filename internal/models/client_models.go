package models

import "time"

// Client represents a staffing client: the company that owns jobs and signs
// off on submitted timesheets.
type Client struct {
	ID           int64     `json:"id"`
	CompanyName  string    `json:"company_name" db:"company_name"`
	ContactName  *string   `json:"contact_name,omitempty" db:"contact_name"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
