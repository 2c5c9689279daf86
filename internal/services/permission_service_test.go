package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"crewops_backend/internal/models"
)

func newPermissionFixture(t *testing.T) (PermissionService, *fakeShiftRepo, *fakeGrantRepo) {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	shifts := newFakeShiftRepo()
	grants := newFakeGrantRepo()
	return NewPermissionService(shifts, grants, db), shifts, grants
}

func TestAuthorizeShiftAction(t *testing.T) {
	svc, shifts, grants := newPermissionFixture(t)

	chiefID := crewChiefActor.UserID
	shift := shifts.add(models.Shift{JobID: 5, CrewChiefID: &chiefID, Status: models.ShiftStatusUpcoming})
	otherShift := shifts.add(models.Shift{JobID: 6, Status: models.ShiftStatusUpcoming})

	// Management always passes.
	if err := svc.AuthorizeShiftAction(managerActor, shift.ID); err != nil {
		t.Errorf("manager: %v", err)
	}
	adminActor := models.Actor{UserID: 99, Username: "root", Role: models.RoleAdmin}
	if err := svc.AuthorizeShiftAction(adminActor, shift.ID); err != nil {
		t.Errorf("admin: %v", err)
	}

	// The assigned crew chief passes on their shift only.
	if err := svc.AuthorizeShiftAction(crewChiefActor, shift.ID); err != nil {
		t.Errorf("crew chief on own shift: %v", err)
	}
	if err := svc.AuthorizeShiftAction(crewChiefActor, otherShift.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("crew chief on other shift: err = %v, want ErrForbidden", err)
	}

	// A plain employee fails everywhere.
	if err := svc.AuthorizeShiftAction(employeeActor, shift.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("employee: err = %v, want ErrForbidden", err)
	}

	// A shift-scoped grant opens exactly that shift.
	shiftID := otherShift.ID
	if _, err := grants.CreateGrant(nil, &models.CrewChiefGrant{UserID: employeeActor.UserID, ShiftID: &shiftID}); err != nil {
		t.Fatalf("CreateGrant: %v", err)
	}
	if err := svc.AuthorizeShiftAction(employeeActor, otherShift.ID); err != nil {
		t.Errorf("grantee on granted shift: %v", err)
	}
	if err := svc.AuthorizeShiftAction(employeeActor, shift.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("grantee on other shift: err = %v, want ErrForbidden", err)
	}

	// A job-scoped grant opens every shift of the job.
	jobGrantee := models.Actor{UserID: 42, Username: "lead", Role: models.RoleEmployee}
	jobID := int64(5)
	if _, err := grants.CreateGrant(nil, &models.CrewChiefGrant{UserID: jobGrantee.UserID, JobID: &jobID}); err != nil {
		t.Fatalf("CreateGrant: %v", err)
	}
	if err := svc.AuthorizeShiftAction(jobGrantee, shift.ID); err != nil {
		t.Errorf("job grantee: %v", err)
	}

	// Unknown shift.
	if err := svc.AuthorizeShiftAction(crewChiefActor, 9999); !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("missing shift: err = %v, want ErrShiftNotFound", err)
	}
}

func TestGrantManagement(t *testing.T) {
	svc, shifts, _ := newPermissionFixture(t)
	shift := shifts.add(models.Shift{JobID: 1, Status: models.ShiftStatusUpcoming})
	shiftID := shift.ID

	// Only management may create or revoke grants.
	req := CreateGrantRequest{UserID: 7, ShiftID: &shiftID}
	if _, err := svc.GrantCrewChief(employeeActor, req); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee grant error = %v, want ErrForbidden", err)
	}

	grant, err := svc.GrantCrewChief(managerActor, req)
	if err != nil {
		t.Fatalf("GrantCrewChief: %v", err)
	}
	if grant.GrantedBy == nil || *grant.GrantedBy != managerActor.UserID {
		t.Errorf("granted_by = %v, want %d", grant.GrantedBy, managerActor.UserID)
	}

	// A grant must name a shift or a job.
	if _, err := svc.GrantCrewChief(managerActor, CreateGrantRequest{UserID: 7}); !errors.Is(err, ErrGrantValidation) {
		t.Fatalf("scopeless grant error = %v, want ErrGrantValidation", err)
	}

	if err := svc.RevokeGrant(employeeActor, grant.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee revoke error = %v, want ErrForbidden", err)
	}
	if err := svc.RevokeGrant(managerActor, grant.ID); err != nil {
		t.Fatalf("RevokeGrant: %v", err)
	}
	if err := svc.RevokeGrant(managerActor, grant.ID); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("double revoke error = %v, want ErrGrantNotFound", err)
	}
}
