package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"crewops_backend/internal/models"
)

type timesheetFixture struct {
	svc         TimesheetService
	timeclock   TimeclockService
	shifts      *fakeShiftRepo
	assignments *fakeAssignmentRepo
	timesheets  *fakeTimesheetRepo
	audit       *fakeAuditRepo
	mock        sqlmock.Sqlmock
	shift       *models.Shift
}

func newTimesheetFixture(t *testing.T) *timesheetFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	shifts := newFakeShiftRepo()
	assignments := newFakeAssignmentRepo()
	entries := newFakeTimeEntryRepo(assignments)
	grants := newFakeGrantRepo()
	timesheets := newFakeTimesheetRepo()
	audit := &fakeAuditRepo{}

	shift := shifts.add(models.Shift{
		JobID:     1,
		ShiftDate: "2026-09-01",
		Status:    models.ShiftStatusInProgress,
	})

	perm := NewPermissionService(shifts, grants, db)
	return &timesheetFixture{
		svc:         NewTimesheetService(timesheets, assignments, shifts, audit, perm, db),
		timeclock:   NewTimeclockService(assignments, entries, shifts, audit, perm, db),
		shifts:      shifts,
		assignments: assignments,
		timesheets:  timesheets,
		audit:       audit,
		mock:        mock,
		shift:       shift,
	}
}

func (f *timesheetFixture) seedWorker(t *testing.T, workerID int64, status string) *models.Assignment {
	t.Helper()
	a, err := f.assignments.CreateAssignment(nil, &models.Assignment{
		ShiftID:    f.shift.ID,
		EmployeeID: &workerID,
		RoleCode:   models.RoleCodeStageHand,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("seedWorker: %v", err)
	}
	return a
}

func (f *timesheetFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func (f *timesheetFixture) expectTxRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

func (f *timesheetFixture) verify(t *testing.T) {
	t.Helper()
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

// finalize walks a ready shift through FinalizeShift and returns the timesheet ID.
func (f *timesheetFixture) finalize(t *testing.T) int64 {
	t.Helper()
	f.expectTx()
	result, err := f.svc.FinalizeShift(managerActor, f.shift.ID)
	if err != nil {
		t.Fatalf("FinalizeShift: %v", err)
	}
	return result.TimesheetID
}

func TestFinalizeShift(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)
	f.seedWorker(t, 11, models.AssignmentStatusNoShow)

	id := f.finalize(t)

	ts, err := f.svc.GetTimesheetByID(id)
	if err != nil {
		t.Fatalf("GetTimesheetByID: %v", err)
	}
	if ts.Status != models.TimesheetStatusPendingClient {
		t.Errorf("timesheet status = %s, want %s", ts.Status, models.TimesheetStatusPendingClient)
	}
	if ts.SubmittedBy == nil || *ts.SubmittedBy != managerActor.UserID {
		t.Errorf("submitted_by = %v, want %d", ts.SubmittedBy, managerActor.UserID)
	}
	shift, _ := f.shifts.GetShiftByID(f.shift.ID)
	if shift.Status != models.ShiftStatusCompleted {
		t.Errorf("shift status = %s, want %s", shift.Status, models.ShiftStatusCompleted)
	}
	f.verify(t)
}

func TestFinalizeShiftWithUnfinishedWorkers(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)
	f.seedWorker(t, 11, models.AssignmentStatusClockedIn)
	f.expectTxRollback()

	_, err := f.svc.FinalizeShift(managerActor, f.shift.ID)
	if !errors.Is(err, ErrUnfinishedWorkers) {
		t.Fatalf("error = %v, want ErrUnfinishedWorkers", err)
	}
	if _, err := f.timesheets.GetByShiftID(nil, f.shift.ID); err == nil {
		t.Error("no timesheet should exist after a failed finalize")
	}
	f.verify(t)
}

func TestFinalizeShiftIdempotent(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)

	first := f.finalize(t)
	second := f.finalize(t)
	if first != second {
		t.Errorf("repeated finalize produced a second timesheet: %d then %d", first, second)
	}
	f.verify(t)
}

func TestFinalizeCancelledShift(t *testing.T) {
	f := newTimesheetFixture(t)
	if err := f.shifts.UpdateShiftStatus(nil, f.shift.ID, models.ShiftStatusCancelled); err != nil {
		t.Fatalf("UpdateShiftStatus: %v", err)
	}
	f.expectTxRollback()

	_, err := f.svc.FinalizeShift(managerActor, f.shift.ID)
	if !errors.Is(err, ErrShiftStateChange) {
		t.Fatalf("error = %v, want ErrShiftStateChange", err)
	}
	f.verify(t)
}

func TestApprovalChain(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)
	id := f.finalize(t)

	f.expectTx()
	ts, err := f.svc.ApproveByClient(managerActor, id, ClientApprovalRequest{ApprovedBy: "Jordan Reyes"})
	if err != nil {
		t.Fatalf("ApproveByClient: %v", err)
	}
	if ts.Status != models.TimesheetStatusPendingManager {
		t.Errorf("after client approval status = %s, want %s", ts.Status, models.TimesheetStatusPendingManager)
	}
	if ts.ClientApprovedBy == nil || *ts.ClientApprovedBy != "Jordan Reyes" {
		t.Errorf("client_approved_by = %v", ts.ClientApprovedBy)
	}

	f.expectTx()
	ts, err = f.svc.ApproveByManager(managerActor, id, ManagerApprovalRequest{})
	if err != nil {
		t.Fatalf("ApproveByManager: %v", err)
	}
	if ts.Status != models.TimesheetStatusPendingFinal {
		t.Errorf("after manager approval status = %s, want %s", ts.Status, models.TimesheetStatusPendingFinal)
	}

	f.expectTx()
	ts, err = f.svc.FinalApprove(managerActor, id)
	if err != nil {
		t.Fatalf("FinalApprove: %v", err)
	}
	if ts.Status != models.TimesheetStatusCompleted {
		t.Errorf("after final approval status = %s, want %s", ts.Status, models.TimesheetStatusCompleted)
	}

	// finalize + three approvals
	if len(f.audit.entries) != 4 {
		t.Errorf("audit entries = %d, want 4", len(f.audit.entries))
	}
	f.verify(t)
}

func TestApprovalOutOfOrder(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)
	id := f.finalize(t)

	// Manager approval before the client signed off.
	f.expectTxRollback()
	if _, err := f.svc.ApproveByManager(managerActor, id, ManagerApprovalRequest{}); !errors.Is(err, ErrTimesheetState) {
		t.Fatalf("manager-first error = %v, want ErrTimesheetState", err)
	}

	// Final approval straight away.
	f.expectTxRollback()
	if _, err := f.svc.FinalApprove(managerActor, id); !errors.Is(err, ErrTimesheetState) {
		t.Fatalf("final-first error = %v, want ErrTimesheetState", err)
	}

	// Client approving twice.
	f.expectTx()
	if _, err := f.svc.ApproveByClient(managerActor, id, ClientApprovalRequest{ApprovedBy: "Jordan Reyes"}); err != nil {
		t.Fatalf("ApproveByClient: %v", err)
	}
	f.expectTxRollback()
	if _, err := f.svc.ApproveByClient(managerActor, id, ClientApprovalRequest{ApprovedBy: "Jordan Reyes"}); !errors.Is(err, ErrTimesheetState) {
		t.Fatalf("second client approval error = %v, want ErrTimesheetState", err)
	}
	f.verify(t)
}

func TestManagerApprovalRequiresManagement(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusShiftEnded)
	id := f.finalize(t)

	f.expectTx()
	if _, err := f.svc.ApproveByClient(managerActor, id, ClientApprovalRequest{ApprovedBy: "Jordan Reyes"}); err != nil {
		t.Fatalf("ApproveByClient: %v", err)
	}
	if _, err := f.svc.ApproveByManager(employeeActor, id, ManagerApprovalRequest{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee manager-approval error = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.FinalApprove(crewChiefActor, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("crew chief final-approval error = %v, want ErrForbidden", err)
	}
	f.verify(t)
}

// Two-worker end-to-end pass: both workers work a full day and the shift
// flows from clock-in through finalize into the approval chain.
func TestShiftLifecycleEndToEnd(t *testing.T) {
	f := newTimesheetFixture(t)
	f.seedWorker(t, 10, models.AssignmentStatusNotStarted)
	f.seedWorker(t, 11, models.AssignmentStatusNotStarted)

	for _, workerID := range []int64{10, 11} {
		f.expectTx()
		if _, err := f.timeclock.ClockIn(managerActor, f.shift.ID, workerID); err != nil {
			t.Fatalf("ClockIn %d: %v", workerID, err)
		}
	}

	// Finalize is refused while both are still clocked in.
	f.expectTxRollback()
	if _, err := f.svc.FinalizeShift(managerActor, f.shift.ID); !errors.Is(err, ErrUnfinishedWorkers) {
		t.Fatalf("early finalize error = %v, want ErrUnfinishedWorkers", err)
	}

	f.expectTx()
	if _, err := f.timeclock.EndAllShifts(managerActor, f.shift.ID); err != nil {
		t.Fatalf("EndAllShifts: %v", err)
	}

	id := f.finalize(t)
	ts, err := f.svc.GetTimesheetByID(id)
	if err != nil {
		t.Fatalf("GetTimesheetByID: %v", err)
	}
	if ts.Status != models.TimesheetStatusPendingClient {
		t.Errorf("timesheet status = %s, want %s", ts.Status, models.TimesheetStatusPendingClient)
	}
	f.verify(t)
}
