package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeTaskRepo struct {
	tasks     map[string]*Task
	assignees map[string]*Assignee // employee id -> snapshot
	byExt     map[string]string    // external id -> employee id
	sequence  int
	order     []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:     make(map[string]*Task),
		assignees: make(map[string]*Assignee),
		byExt:     make(map[string]string),
	}
}

func (r *fakeTaskRepo) addEmployee(id, externalID, name, email string) {
	r.assignees[id] = &Assignee{ID: id, Name: name, Email: email}
	r.byExt[externalID] = id
}

func (r *fakeTaskRepo) Create(_ context.Context, t *Task) (*Task, error) {
	if _, ok := r.assignees[t.AssignedTo]; !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := cloneTask(t)
	r.sequence++
	clone.ID = fmt.Sprintf("task-%d", r.sequence)
	clone.Assignee = cloneAssignee(r.assignees[clone.AssignedTo])
	r.tasks[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneTask(clone), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *Task) (*Task, error) {
	if _, ok := r.tasks[t.ID]; !ok {
		return nil, ErrTaskNotFound
	}
	clone := cloneTask(t)
	clone.Assignee = cloneAssignee(r.assignees[clone.AssignedTo])
	r.tasks[t.ID] = clone
	return cloneTask(clone), nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	for idx, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *fakeTaskRepo) ListAll(_ context.Context) ([]*Task, error) {
	result := make([]*Task, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, cloneTask(r.tasks[r.order[i]]))
	}
	return result, nil
}

func (r *fakeTaskRepo) ListByAssignee(_ context.Context, employeeID string) ([]*Task, error) {
	result := make([]*Task, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.tasks[r.order[i]]
		if t.AssignedTo == employeeID {
			clone := cloneTask(t)
			clone.Assignee = nil
			result = append(result, clone)
		}
	}
	return result, nil
}

func (r *fakeTaskRepo) DeleteByAssignee(_ context.Context, employeeID string) (int64, error) {
	var removed int64
	for id, t := range r.tasks {
		if t.AssignedTo == employeeID {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeTaskRepo) FindAssigneeByID(_ context.Context, id string) (*Assignee, error) {
	a, ok := r.assignees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneAssignee(a), nil
}

func (r *fakeTaskRepo) FindAssigneeByExternalID(_ context.Context, externalID string) (*Assignee, error) {
	id, ok := r.byExt[externalID]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneAssignee(r.assignees[id]), nil
}

func cloneTask(t *Task) *Task {
	if t == nil {
		return nil
	}
	copied := *t
	copied.Assignee = cloneAssignee(t.Assignee)
	return &copied
}

func cloneAssignee(a *Assignee) *Assignee {
	if a == nil {
		return nil
	}
	copied := *a
	if a.Department != nil {
		dept := *a.Department
		copied.Department = &dept
	}
	return &copied
}

var (
	adminCaller = Caller{ExternalID: "ext-admin", Role: authz.RoleAdmin}
	aliceCaller = Caller{ExternalID: "ext-alice", Role: authz.RoleEmployee}
	bobCaller   = Caller{ExternalID: "ext-bob", Role: authz.RoleEmployee}
)

func newSeededRepo() *fakeTaskRepo {
	repo := newFakeTaskRepo()
	repo.addEmployee("emp-alice", "ext-alice", "alice", "alice@x.com")
	repo.addEmployee("emp-bob", "ext-bob", "Bob", "bob@x.com")
	return repo
}

func TestService_CreateTask_DefaultsAndRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, repo, &stubClock{now: now}, nil)

	due := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title:       "Report",
		Description: "Quarterly report",
		AssignedTo:  "emp-alice",
		DueDate:     due,
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	if created.Status != StatusToDo {
		t.Fatalf("expected default status To Do, got %s", created.Status)
	}
	if created.Priority != PriorityMedium {
		t.Fatalf("expected default priority Medium, got %s", created.Priority)
	}
	if created.TimeLogged != 0 {
		t.Fatalf("expected time logged 0, got %d", created.TimeLogged)
	}
	if created.AssignedToEmail != "alice@x.com" {
		t.Fatalf("expected denormalized email alice@x.com, got %s", created.AssignedToEmail)
	}
	if created.CreatedBy != adminCaller.ExternalID {
		t.Fatalf("expected created_by %s, got %s", adminCaller.ExternalID, created.CreatedBy)
	}

	fetched, err := svc.GetTask(context.Background(), adminCaller, created.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if fetched.Title != created.Title || fetched.Description != created.Description ||
		fetched.Priority != created.Priority || !fetched.DueDate.Equal(created.DueDate) ||
		fetched.Status != StatusToDo || fetched.TimeLogged != 0 {
		t.Fatalf("round trip mismatch: %+v vs %+v", fetched, created)
	}
	if fetched.Assignee == nil || fetched.Assignee.Name != "alice" {
		t.Fatalf("expected joined assignee, got %+v", fetched.Assignee)
	}
}

func TestService_CreateTask_Validation(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)
	due := time.Now().UTC().Add(24 * time.Hour)

	cases := []struct {
		name string
		in   CreateTaskInput
		want error
	}{
		{"missing title", CreateTaskInput{Description: "d", AssignedTo: "emp-alice", DueDate: due}, ErrInvalidTitle},
		{"missing description", CreateTaskInput{Title: "t", AssignedTo: "emp-alice", DueDate: due}, ErrInvalidDescription},
		{"missing assignee", CreateTaskInput{Title: "t", Description: "d", DueDate: due}, ErrInvalidAssignee},
		{"missing due date", CreateTaskInput{Title: "t", Description: "d", AssignedTo: "emp-alice"}, ErrInvalidDueDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.CreateTask(context.Background(), adminCaller, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_CreateTask_UnknownAssigneeNotPersisted(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	_, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title:       "t",
		Description: "d",
		AssignedTo:  "emp-missing",
		DueDate:     time.Now().UTC(),
	})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("expected no task persisted, got %d", len(repo.tasks))
	}
}

func TestService_CreateTask_RequiresAdmin(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	_, err := svc.CreateTask(context.Background(), aliceCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_ListTasks_EmployeeSeesOnlyOwn(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)
	due := time.Now().UTC().Add(time.Hour)

	for i, assignee := range []string{"emp-alice", "emp-bob", "emp-alice"} {
		if _, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
			Title:       fmt.Sprintf("task %d", i),
			Description: "d",
			AssignedTo:  assignee,
			DueDate:     due,
		}); err != nil {
			t.Fatalf("CreateTask returned error: %v", err)
		}
	}

	own, err := svc.ListTasks(context.Background(), aliceCaller)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("expected 2 tasks for alice, got %d", len(own))
	}
	for _, task := range own {
		if task.AssignedTo != "emp-alice" {
			t.Fatalf("leaked task assigned to %s", task.AssignedTo)
		}
		if task.Assignee != nil {
			t.Fatalf("employee listing must not join assignee")
		}
	}

	all, err := svc.ListTasks(context.Background(), adminCaller)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks for admin, got %d", len(all))
	}
	if all[0].Assignee == nil {
		t.Fatalf("admin listing must join assignee")
	}
	if all[0].Title != "task 2" {
		t.Fatalf("expected newest first, got %s", all[0].Title)
	}
}

func TestService_ListTasks_EmployeeWithoutRecord(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	unknown := Caller{ExternalID: "ext-ghost", Role: authz.RoleEmployee}
	if _, err := svc.ListTasks(context.Background(), unknown); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_GetTask_OwnershipCheck(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	if _, err := svc.GetTask(context.Background(), aliceCaller, created.ID); err != nil {
		t.Fatalf("owner GetTask returned error: %v", err)
	}
	if _, err := svc.GetTask(context.Background(), bobCaller, created.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.GetTask(context.Background(), adminCaller, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestService_UpdateTask_EmployeePath(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	status := StatusCompleted
	minutes := 45
	otherTitle := "hijacked"
	updated, err := svc.UpdateTask(context.Background(), aliceCaller, UpdateTaskInput{
		ID:         created.ID,
		Status:     &status,
		TimeLogged: &minutes,
		Title:      &otherTitle, // 担当社員からは無視される
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}

	if updated.Status != StatusCompleted || updated.TimeLogged != 45 {
		t.Fatalf("expected Completed/45, got %s/%d", updated.Status, updated.TimeLogged)
	}
	if updated.Title != "t" {
		t.Fatalf("employee update must not change title, got %s", updated.Title)
	}

	// 他人のタスクは更新できない。
	if _, err := svc.UpdateTask(context.Background(), bobCaller, UpdateTaskInput{
		ID:     created.ID,
		Status: &status,
	}); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_UpdateTask_EmployeeInvalidValues(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	bogus := Status("Paused")
	if _, err := svc.UpdateTask(context.Background(), aliceCaller, UpdateTaskInput{
		ID: created.ID, Status: &bogus,
	}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	negative := -5
	if _, err := svc.UpdateTask(context.Background(), aliceCaller, UpdateTaskInput{
		ID: created.ID, TimeLogged: &negative,
	}); !errors.Is(err, ErrInvalidTimeLogged) {
		t.Fatalf("expected ErrInvalidTimeLogged, got %v", err)
	}
}

func TestService_UpdateTask_AdminReassignmentRecomputesEmail(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	bob := "emp-bob"
	priority := PriorityUrgent
	updated, err := svc.UpdateTask(context.Background(), adminCaller, UpdateTaskInput{
		ID:         created.ID,
		AssignedTo: &bob,
		Priority:   &priority,
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}

	if updated.AssignedTo != "emp-bob" {
		t.Fatalf("expected reassignment to emp-bob, got %s", updated.AssignedTo)
	}
	if updated.AssignedToEmail != "bob@x.com" {
		t.Fatalf("expected recomputed email bob@x.com, got %s", updated.AssignedToEmail)
	}
	if updated.Priority != PriorityUrgent {
		t.Fatalf("expected priority Urgent, got %s", updated.Priority)
	}

	unknown := "emp-missing"
	if _, err := svc.UpdateTask(context.Background(), adminCaller, UpdateTaskInput{
		ID:         created.ID,
		AssignedTo: &unknown,
	}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_UpdateTask_NotFound(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	status := StatusBlocked
	if _, err := svc.UpdateTask(context.Background(), adminCaller, UpdateTaskInput{
		ID: "missing", Status: &status,
	}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestService_DeleteTask(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo()
	svc := NewService(repo, repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), adminCaller, CreateTaskInput{
		Title: "t", Description: "d", AssignedTo: "emp-alice", DueDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	if err := svc.DeleteTask(context.Background(), aliceCaller, created.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteTask(context.Background(), adminCaller, created.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if err := svc.DeleteTask(context.Background(), adminCaller, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
