package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"crewops_backend/internal/models"
)

type assignmentFixture struct {
	svc         AssignmentService
	shifts      *fakeShiftRepo
	assignments *fakeAssignmentRepo
	entries     *fakeTimeEntryRepo
	users       *fakeAuthRepo
	shift       *models.Shift
	worker      *models.User
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	shifts := newFakeShiftRepo()
	assignments := newFakeAssignmentRepo()
	entries := newFakeTimeEntryRepo(assignments)
	grants := newFakeGrantRepo()
	users := newFakeAuthRepo()

	shift := shifts.add(models.Shift{JobID: 1, ShiftDate: "2026-09-01", Status: models.ShiftStatusUpcoming})
	worker := users.addUser(models.User{Username: "worker10", Role: models.RoleEmployee, IsActive: true})

	perm := NewPermissionService(shifts, grants, db)
	return &assignmentFixture{
		svc:         NewAssignmentService(assignments, entries, shifts, users, perm, db),
		shifts:      shifts,
		assignments: assignments,
		entries:     entries,
		users:       users,
		shift:       shift,
		worker:      worker,
	}
}

func TestAssignWorker(t *testing.T) {
	f := newAssignmentFixture(t)

	a, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
		RoleLabel:  "Stage Hand",
	})
	if err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}
	if a.Status != models.AssignmentStatusNotStarted {
		t.Errorf("status = %s, want %s", a.Status, models.AssignmentStatusNotStarted)
	}

	// The same worker cannot be placed on the shift twice.
	_, err = f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeGeneral,
	})
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("duplicate error = %v, want ErrDuplicateAssignment", err)
	}
}

func TestAssignWorkerValidation(t *testing.T) {
	f := newAssignmentFixture(t)

	if _, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   "XX",
	}); !errors.Is(err, ErrAssignmentValidation) {
		t.Fatalf("bad role code error = %v, want ErrAssignmentValidation", err)
	}

	missing := int64(999)
	if _, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &missing,
		RoleCode:   models.RoleCodeGeneral,
	}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("missing employee error = %v, want ErrEmployeeNotFound", err)
	}

	if _, err := f.svc.AssignWorker(managerActor, 999, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeGeneral,
	}); !errors.Is(err, ErrShiftNotFound) {
		t.Fatalf("missing shift error = %v, want ErrShiftNotFound", err)
	}
}

func TestAssignPlaceholderAndFill(t *testing.T) {
	f := newAssignmentFixture(t)

	slot, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		RoleCode:  models.RoleCodeForkOp,
		RoleLabel: "Fork Operator",
	})
	if err != nil {
		t.Fatalf("placeholder AssignWorker: %v", err)
	}
	if slot.EmployeeID != nil {
		t.Fatalf("placeholder should have no employee, got %v", *slot.EmployeeID)
	}

	filled, err := f.svc.ReassignWorker(managerActor, slot.ID, ReassignWorkerRequest{EmployeeID: f.worker.ID})
	if err != nil {
		t.Fatalf("ReassignWorker: %v", err)
	}
	if filled.EmployeeID == nil || *filled.EmployeeID != f.worker.ID {
		t.Errorf("employee = %v, want %d", filled.EmployeeID, f.worker.ID)
	}
}

func TestReassignWithEntriesFails(t *testing.T) {
	f := newAssignmentFixture(t)
	other := f.users.addUser(models.User{Username: "worker11", Role: models.RoleEmployee, IsActive: true})

	a, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
	})
	if err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}
	if _, err := f.entries.CreateEntry(nil, &models.TimeEntry{
		AssignmentID: a.ID, EntryNumber: 1, ClockIn: time.Now(),
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if _, err := f.svc.ReassignWorker(managerActor, a.ID, ReassignWorkerRequest{EmployeeID: other.ID}); !errors.Is(err, ErrAssignmentHasEntries) {
		t.Fatalf("reassign error = %v, want ErrAssignmentHasEntries", err)
	}
}

func TestUnassignWorker(t *testing.T) {
	f := newAssignmentFixture(t)

	a, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
	})
	if err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}

	if err := f.svc.UnassignWorker(managerActor, a.ID); err != nil {
		t.Fatalf("UnassignWorker: %v", err)
	}
	if err := f.svc.UnassignWorker(managerActor, a.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("double unassign error = %v, want ErrAssignmentNotFound", err)
	}
}

func TestUnassignWorkerWithEntriesFails(t *testing.T) {
	f := newAssignmentFixture(t)

	a, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
	})
	if err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}
	if _, err := f.entries.CreateEntry(nil, &models.TimeEntry{
		AssignmentID: a.ID, EntryNumber: 1, ClockIn: time.Now(),
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if err := f.svc.UnassignWorker(managerActor, a.ID); !errors.Is(err, ErrAssignmentHasEntries) {
		t.Fatalf("unassign error = %v, want ErrAssignmentHasEntries", err)
	}
	// The assignment and its recorded time survive.
	if _, err := f.assignments.GetAssignmentByID(nil, a.ID); err != nil {
		t.Errorf("assignment should still exist: %v", err)
	}
}

func TestAssignOnClosedShift(t *testing.T) {
	f := newAssignmentFixture(t)
	if err := f.shifts.UpdateShiftStatus(nil, f.shift.ID, models.ShiftStatusCompleted); err != nil {
		t.Fatalf("UpdateShiftStatus: %v", err)
	}

	_, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
	})
	if !errors.Is(err, ErrShiftStateChange) {
		t.Fatalf("error = %v, want ErrShiftStateChange", err)
	}
}

func TestGetShiftRoster(t *testing.T) {
	f := newAssignmentFixture(t)
	other := f.users.addUser(models.User{Username: "worker11", Role: models.RoleEmployee, IsActive: true})

	a1, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &f.worker.ID,
		RoleCode:   models.RoleCodeStageHand,
	})
	if err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}
	if _, err := f.svc.AssignWorker(managerActor, f.shift.ID, AssignWorkerRequest{
		EmployeeID: &other.ID,
		RoleCode:   models.RoleCodeRigger,
	}); err != nil {
		t.Fatalf("AssignWorker: %v", err)
	}
	if _, err := f.entries.CreateEntry(nil, &models.TimeEntry{
		AssignmentID: a1.ID, EntryNumber: 1, ClockIn: time.Now(),
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	roster, err := f.svc.GetShiftRoster(f.shift.ID)
	if err != nil {
		t.Fatalf("GetShiftRoster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size = %d, want 2", len(roster))
	}
	if len(roster[0].TimeEntries) != 1 {
		t.Errorf("first assignment entries = %d, want 1", len(roster[0].TimeEntries))
	}
	if len(roster[1].TimeEntries) != 0 {
		t.Errorf("second assignment entries = %d, want 0", len(roster[1].TimeEntries))
	}
}
