package services

import (
	"sort"
	"time"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// In-memory repository fakes. They enforce the same uniqueness rules the
// schema's indexes enforce so the services can be exercised without a
// database.

var (
	_ repositories.ShiftRepository      = (*fakeShiftRepo)(nil)
	_ repositories.AssignmentRepository = (*fakeAssignmentRepo)(nil)
	_ repositories.TimeEntryRepository  = (*fakeTimeEntryRepo)(nil)
	_ repositories.TimesheetRepository  = (*fakeTimesheetRepo)(nil)
	_ repositories.GrantRepository      = (*fakeGrantRepo)(nil)
	_ repositories.AuditRepository      = (*fakeAuditRepo)(nil)
	_ repositories.AuthRepository       = (*fakeAuthRepo)(nil)
)

// --- fakeShiftRepo ---

type fakeShiftRepo struct {
	shifts map[int64]*models.Shift
	nextID int64
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[int64]*models.Shift), nextID: 1}
}

func (f *fakeShiftRepo) add(shift models.Shift) *models.Shift {
	shift.ID = f.nextID
	f.nextID++
	f.shifts[shift.ID] = &shift
	return &shift
}

func (f *fakeShiftRepo) CreateShift(_ repositories.SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	return f.add(*shift), nil
}

func (f *fakeShiftRepo) GetShiftByID(id int64) (*models.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *shift
	return &copied, nil
}

func (f *fakeShiftRepo) GetShiftForUpdate(_ repositories.SQLExecutor, id int64) (*models.Shift, error) {
	return f.GetShiftByID(id)
}

func (f *fakeShiftRepo) GetShifts(_ models.ShiftFilters) ([]models.Shift, int, error) {
	out := make([]models.Shift, 0, len(f.shifts))
	for _, s := range f.shifts {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeShiftRepo) UpdateShift(_ repositories.SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	if _, ok := f.shifts[shift.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *shift
	f.shifts[shift.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeShiftRepo) UpdateShiftStatus(_ repositories.SQLExecutor, id int64, status string) error {
	shift, ok := f.shifts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	shift.Status = status
	return nil
}

func (f *fakeShiftRepo) DeleteShift(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.shifts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.shifts, id)
	return nil
}

// --- fakeAssignmentRepo ---

type fakeAssignmentRepo struct {
	assignments map[int64]*models.Assignment
	nextID      int64

	updateStatusesErr error // injected failure for transaction tests
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[int64]*models.Assignment), nextID: 1}
}

func (f *fakeAssignmentRepo) hasWorker(shiftID, employeeID int64, excludeID int64) bool {
	for _, a := range f.assignments {
		if a.ID != excludeID && a.ShiftID == shiftID && a.EmployeeID != nil && *a.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

func (f *fakeAssignmentRepo) CreateAssignment(_ repositories.SQLExecutor, assignment *models.Assignment) (*models.Assignment, error) {
	if assignment.EmployeeID != nil && f.hasWorker(assignment.ShiftID, *assignment.EmployeeID, 0) {
		return nil, repositories.ErrDuplicateKey
	}
	copied := *assignment
	copied.ID = f.nextID
	f.nextID++
	f.assignments[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeAssignmentRepo) GetAssignmentByID(_ repositories.SQLExecutor, id int64) (*models.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAssignmentRepo) GetAssignmentForUpdate(executor repositories.SQLExecutor, id int64) (*models.Assignment, error) {
	return f.GetAssignmentByID(executor, id)
}

func (f *fakeAssignmentRepo) GetAssignmentByWorker(_ repositories.SQLExecutor, shiftID, employeeID int64) (*models.Assignment, error) {
	for _, a := range f.assignments {
		if a.ShiftID == shiftID && a.EmployeeID != nil && *a.EmployeeID == employeeID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAssignmentRepo) ListByShift(shiftID int64) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.ShiftID == shiftID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAssignmentRepo) UpdateEmployee(_ repositories.SQLExecutor, id int64, employeeID int64, status string) error {
	a, ok := f.assignments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if f.hasWorker(a.ShiftID, employeeID, id) {
		return repositories.ErrDuplicateKey
	}
	a.EmployeeID = &employeeID
	a.Status = status
	return nil
}

func (f *fakeAssignmentRepo) UpdateStatus(_ repositories.SQLExecutor, id int64, status string) error {
	a, ok := f.assignments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAssignmentRepo) UpdateStatusesByShift(_ repositories.SQLExecutor, shiftID int64, fromStatuses []string, toStatus string) ([]models.Assignment, error) {
	if f.updateStatusesErr != nil {
		return nil, f.updateStatusesErr
	}
	from := make(map[string]bool, len(fromStatuses))
	for _, s := range fromStatuses {
		from[s] = true
	}
	var updated []models.Assignment
	for _, a := range f.assignments {
		if a.ShiftID == shiftID && from[a.Status] {
			a.Status = toStatus
			updated = append(updated, *a)
		}
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })
	return updated, nil
}

func (f *fakeAssignmentRepo) CountUnfinished(_ repositories.SQLExecutor, shiftID int64) (int, error) {
	count := 0
	for _, a := range f.assignments {
		if a.ShiftID == shiftID && !models.IsTerminalAssignmentStatus(a.Status) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAssignmentRepo) DeleteAssignment(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.assignments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.assignments, id)
	return nil
}

// --- fakeTimeEntryRepo ---

type fakeTimeEntryRepo struct {
	entries     map[int64]*models.TimeEntry
	nextID      int64
	assignments *fakeAssignmentRepo // for shift-scoped lookups
}

func newFakeTimeEntryRepo(assignments *fakeAssignmentRepo) *fakeTimeEntryRepo {
	return &fakeTimeEntryRepo{entries: make(map[int64]*models.TimeEntry), nextID: 1, assignments: assignments}
}

func (f *fakeTimeEntryRepo) CreateEntry(_ repositories.SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error) {
	for _, e := range f.entries {
		if e.AssignmentID == entry.AssignmentID && e.IsActive {
			return nil, repositories.ErrDuplicateKey
		}
	}
	copied := *entry
	copied.ID = f.nextID
	copied.IsActive = true
	f.nextID++
	f.entries[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeTimeEntryRepo) GetActiveEntry(_ repositories.SQLExecutor, assignmentID int64) (*models.TimeEntry, error) {
	for _, e := range f.entries {
		if e.AssignmentID == assignmentID && e.IsActive {
			copied := *e
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTimeEntryRepo) UsedEntryNumbers(_ repositories.SQLExecutor, assignmentID int64) ([]int, error) {
	var used []int
	for _, e := range f.entries {
		if e.AssignmentID == assignmentID {
			used = append(used, e.EntryNumber)
		}
	}
	sort.Ints(used)
	return used, nil
}

func (f *fakeTimeEntryRepo) CloseEntry(_ repositories.SQLExecutor, entryID int64, clockOut time.Time) error {
	e, ok := f.entries[entryID]
	if !ok || !e.IsActive {
		return repositories.ErrNotFound
	}
	e.ClockOut = &clockOut
	e.IsActive = false
	return nil
}

func (f *fakeTimeEntryRepo) CloseActiveByShift(_ repositories.SQLExecutor, shiftID int64, clockOut time.Time) ([]int64, error) {
	var closed []int64
	for _, e := range f.entries {
		if !e.IsActive {
			continue
		}
		a, ok := f.assignments.assignments[e.AssignmentID]
		if !ok || a.ShiftID != shiftID {
			continue
		}
		out := clockOut
		e.ClockOut = &out
		e.IsActive = false
		closed = append(closed, e.AssignmentID)
	}
	return closed, nil
}

func (f *fakeTimeEntryRepo) CountByAssignment(_ repositories.SQLExecutor, assignmentID int64) (int, error) {
	count := 0
	for _, e := range f.entries {
		if e.AssignmentID == assignmentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTimeEntryRepo) ListByAssignment(assignmentID int64) ([]models.TimeEntry, error) {
	var out []models.TimeEntry
	for _, e := range f.entries {
		if e.AssignmentID == assignmentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryNumber < out[j].EntryNumber })
	return out, nil
}

func (f *fakeTimeEntryRepo) ListByShift(shiftID int64) ([]models.TimeEntry, error) {
	var out []models.TimeEntry
	for _, e := range f.entries {
		if a, ok := f.assignments.assignments[e.AssignmentID]; ok && a.ShiftID == shiftID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- fakeTimesheetRepo ---

type fakeTimesheetRepo struct {
	timesheets map[int64]*models.Timesheet // by ID
	byShift    map[int64]int64             // shiftID -> ID
	nextID     int64
}

func newFakeTimesheetRepo() *fakeTimesheetRepo {
	return &fakeTimesheetRepo{
		timesheets: make(map[int64]*models.Timesheet),
		byShift:    make(map[int64]int64),
		nextID:     1,
	}
}

func (f *fakeTimesheetRepo) UpsertSubmission(_ repositories.SQLExecutor, shiftID, submittedBy int64, submittedAt time.Time) (*models.Timesheet, error) {
	if id, ok := f.byShift[shiftID]; ok {
		ts := f.timesheets[id]
		ts.SubmittedBy = &submittedBy
		ts.SubmittedAt = &submittedAt
		copied := *ts
		return &copied, nil
	}
	ts := &models.Timesheet{
		ID:          f.nextID,
		ShiftID:     shiftID,
		Status:      models.TimesheetStatusPendingClient,
		SubmittedBy: &submittedBy,
		SubmittedAt: &submittedAt,
	}
	f.nextID++
	f.timesheets[ts.ID] = ts
	f.byShift[shiftID] = ts.ID
	copied := *ts
	return &copied, nil
}

func (f *fakeTimesheetRepo) GetByID(id int64) (*models.Timesheet, error) {
	ts, ok := f.timesheets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *ts
	return &copied, nil
}

func (f *fakeTimesheetRepo) GetByIDForUpdate(_ repositories.SQLExecutor, id int64) (*models.Timesheet, error) {
	return f.GetByID(id)
}

func (f *fakeTimesheetRepo) GetByShiftID(_ repositories.SQLExecutor, shiftID int64) (*models.Timesheet, error) {
	id, ok := f.byShift[shiftID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.GetByID(id)
}

func (f *fakeTimesheetRepo) UpdateClientApproval(_ repositories.SQLExecutor, id int64, status string, approvedBy string, approvedAt time.Time, signature *string) error {
	ts, ok := f.timesheets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	ts.Status = status
	ts.ClientApprovedBy = &approvedBy
	ts.ClientApprovedAt = &approvedAt
	ts.ClientSignature = signature
	return nil
}

func (f *fakeTimesheetRepo) UpdateManagerApproval(_ repositories.SQLExecutor, id int64, status string, approvedBy int64, approvedAt time.Time, signature *string) error {
	ts, ok := f.timesheets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	ts.Status = status
	ts.ManagerApprovedBy = &approvedBy
	ts.ManagerApprovedAt = &approvedAt
	ts.ManagerSignature = signature
	return nil
}

func (f *fakeTimesheetRepo) UpdateStatus(_ repositories.SQLExecutor, id int64, status string) error {
	ts, ok := f.timesheets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	ts.Status = status
	return nil
}

func (f *fakeTimesheetRepo) List(_ models.TimesheetFilters) ([]models.Timesheet, int, error) {
	out := make([]models.Timesheet, 0, len(f.timesheets))
	for _, ts := range f.timesheets {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

// --- fakeGrantRepo ---

type fakeGrantRepo struct {
	grants map[int64]*models.CrewChiefGrant
	nextID int64
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[int64]*models.CrewChiefGrant), nextID: 1}
}

func (f *fakeGrantRepo) CreateGrant(_ repositories.SQLExecutor, grant *models.CrewChiefGrant) (*models.CrewChiefGrant, error) {
	copied := *grant
	copied.ID = f.nextID
	f.nextID++
	f.grants[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeGrantRepo) DeleteGrant(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.grants[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.grants, id)
	return nil
}

func (f *fakeGrantRepo) HasGrantForShift(userID, shiftID, jobID int64) (bool, error) {
	for _, g := range f.grants {
		if g.UserID != userID {
			continue
		}
		if g.ShiftID != nil && *g.ShiftID == shiftID {
			return true, nil
		}
		if g.JobID != nil && *g.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGrantRepo) ListByUser(userID int64) ([]models.CrewChiefGrant, error) {
	var out []models.CrewChiefGrant
	for _, g := range f.grants {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- fakeAuditRepo ---

type fakeAuditRepo struct {
	entries []models.AuditEntry
	failErr error // injected failure for transaction tests
}

func (f *fakeAuditRepo) Append(_ repositories.SQLExecutor, entry *models.AuditEntry) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByShift(shiftID int64) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.ShiftID != nil && *e.ShiftID == shiftID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- fakeAuthRepo ---

type fakeAuthRepo struct {
	users  map[int64]*models.User
	hashes map[int64]string
	nextID int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[int64]*models.User), hashes: make(map[int64]string), nextID: 1}
}

func (f *fakeAuthRepo) addUser(user models.User) *models.User {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = &user
	return &user
}

func (f *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	created := f.addUser(*user)
	f.hashes[created.ID] = hashedPassword
	return created.ID, nil
}

func (f *fakeAuthRepo) FindUserByUsername(username string) (*models.User, string, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, f.hashes[u.ID], nil
		}
	}
	return nil, "", repositories.ErrNotFound
}

func (f *fakeAuthRepo) FindUserByID(userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeAuthRepo) ListUsers(role *string, _ *string, _, _ int) ([]models.User, int, error) {
	var out []models.User
	for _, u := range f.users {
		if role != nil && u.Role != *role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}
