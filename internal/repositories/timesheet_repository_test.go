package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"crewops_backend/internal/models"
)

func timesheetColumns() []string {
	return []string{
		"id", "shift_id", "status", "submitted_by", "submitted_at",
		"client_approved_by", "client_approved_at", "client_signature",
		"manager_approved_by", "manager_approved_at", "manager_signature",
		"created_at", "updated_at",
	}
}

func TestUpsertSubmission(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimesheetRepository(db)

	now := time.Now()
	submittedBy := int64(1)
	rows := sqlmock.NewRows(timesheetColumns()).
		AddRow(int64(7), int64(5), models.TimesheetStatusPendingClient, submittedBy, now,
			nil, nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery("INSERT INTO timesheets .+ ON CONFLICT").
		WillReturnRows(rows)

	ts, err := repo.UpsertSubmission(db, 5, submittedBy, now)
	if err != nil {
		t.Fatalf("UpsertSubmission: %v", err)
	}
	if ts.ID != 7 || ts.ShiftID != 5 {
		t.Errorf("timesheet = %+v", ts)
	}
	if ts.Status != models.TimesheetStatusPendingClient {
		t.Errorf("status = %s, want %s", ts.Status, models.TimesheetStatusPendingClient)
	}
}

func TestUpdateClientApprovalNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimesheetRepository(db)

	mock.ExpectExec("UPDATE timesheets SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateClientApproval(db, 99, models.TimesheetStatusPendingManager, "Jordan Reyes", time.Now(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetByShiftIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimesheetRepository(db)

	mock.ExpectQuery("SELECT .+ FROM timesheets WHERE shift_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(timesheetColumns()))

	_, err := repo.GetByShiftID(db, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
