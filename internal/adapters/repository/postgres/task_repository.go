package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
	pgdb "github.com/ogurasousui/taskdesk-http-clean-arch/internal/platform/db/postgres"
)

const taskColumns = `id, title, description, assigned_to, assigned_to_email, status, priority, due_date, time_logged, created_by, created_at, updated_at`

// TaskRepository は PostgreSQL を利用したタスク永続化の実装です。
// task.AssigneeDirectory も実装し、担当者スナップショットの解決を担います。
type TaskRepository struct {
	pool pgdb.Queryer
}

// NewTaskRepository は TaskRepository を生成します。
func NewTaskRepository(pool pgdb.Queryer) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create はタスクを新規作成し、担当者を結合して返します。
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO tasks (id, title, description, assigned_to, assigned_to_email, status, priority, due_date, time_logged, created_by, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            RETURNING `+taskColumns+`
        )
        SELECT i.id, i.title, i.description, i.assigned_to, i.assigned_to_email, i.status, i.priority, i.due_date, i.time_logged, i.created_by, i.created_at, i.updated_at,
               e.id, e.name, e.email, e.department
          FROM inserted i
          JOIN employees e ON e.id = i.assigned_to
    `,
		uuid.NewString(),
		t.Title,
		t.Description,
		t.AssignedTo,
		t.AssignedToEmail,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.TimeLogged,
		t.CreatedBy,
		t.CreatedAt,
		t.UpdatedAt,
	)

	created, err := scanJoinedTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return created, nil
}

// Update はタスクを更新し、担当者を結合して返します。
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE tasks
               SET title = $1,
                   description = $2,
                   assigned_to = $3,
                   assigned_to_email = $4,
                   status = $5,
                   priority = $6,
                   due_date = $7,
                   time_logged = $8,
                   updated_at = $9
             WHERE id = $10
            RETURNING `+taskColumns+`
        )
        SELECT u.id, u.title, u.description, u.assigned_to, u.assigned_to_email, u.status, u.priority, u.due_date, u.time_logged, u.created_by, u.created_at, u.updated_at,
               e.id, e.name, e.email, e.department
          FROM updated u
          JOIN employees e ON e.id = u.assigned_to
    `,
		t.Title,
		t.Description,
		t.AssignedTo,
		t.AssignedToEmail,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.TimeLogged,
		t.UpdatedAt,
		t.ID,
	)

	updated, err := scanJoinedTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return updated, nil
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return translateTaskPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// FindByID は ID でタスクを取得し、担当者を結合して返します。
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT t.id, t.title, t.description, t.assigned_to, t.assigned_to_email, t.status, t.priority, t.due_date, t.time_logged, t.created_by, t.created_at, t.updated_at,
               e.id, e.name, e.email, e.department
          FROM tasks t
          JOIN employees e ON e.id = t.assigned_to
         WHERE t.id = $1
         LIMIT 1
    `, id)

	found, err := scanJoinedTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return found, nil
}

// ListAll は全タスクを担当者付きで作成日時の降順で取得します。
func (r *TaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT t.id, t.title, t.description, t.assigned_to, t.assigned_to_email, t.status, t.priority, t.due_date, t.time_logged, t.created_by, t.created_at, t.updated_at,
               e.id, e.name, e.email, e.department
          FROM tasks t
          JOIN employees e ON e.id = t.assigned_to
         ORDER BY t.created_at DESC, t.id DESC
    `)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanJoinedTask(rows)
		if err != nil {
			return nil, translateTaskPgError(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, translateTaskPgError(err)
	}

	return tasks, nil
}

// ListByAssignee は担当社員のタスクを結合なしで作成日時の降順で取得します。
func (r *TaskRepository) ListByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+taskColumns+`
          FROM tasks
         WHERE assigned_to = $1
         ORDER BY created_at DESC, id DESC
    `, employeeID)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, translateTaskPgError(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, translateTaskPgError(err)
	}

	return tasks, nil
}

// DeleteByAssignee は担当社員のタスクをまとめて削除し、件数を返します。
// 社員削除のカスケードで使われます。
func (r *TaskRepository) DeleteByAssignee(ctx context.Context, employeeID string) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM tasks WHERE assigned_to = $1`, employeeID)
	if err != nil {
		return 0, translateTaskPgError(err)
	}
	return tag.RowsAffected(), nil
}

// FindAssigneeByID は社員 ID から担当者スナップショットを解決します。
func (r *TaskRepository) FindAssigneeByID(ctx context.Context, id string) (*task.Assignee, error) {
	return r.findAssignee(ctx, `id = $1`, id)
}

// FindAssigneeByExternalID は外部 ID から担当者スナップショットを解決します。
func (r *TaskRepository) FindAssigneeByExternalID(ctx context.Context, externalID string) (*task.Assignee, error) {
	return r.findAssignee(ctx, `external_id = $1`, externalID)
}

func (r *TaskRepository) findAssignee(ctx context.Context, condition string, arg any) (*task.Assignee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, email, department
          FROM employees
         WHERE `+condition+`
         LIMIT 1
    `, arg)

	assignee, err := scanAssignee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrEmployeeNotFound
		}
		return nil, err
	}
	return assignee, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		id         string
		title      string
		desc       string
		assignedTo string
		email      string
		status     string
		priority   string
		dueDate    time.Time
		timeLogged int
		createdBy  string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&title,
		&desc,
		&assignedTo,
		&email,
		&status,
		&priority,
		&dueDate,
		&timeLogged,
		&createdBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	return &task.Task{
		ID:              id,
		Title:           title,
		Description:     desc,
		AssignedTo:      assignedTo,
		AssignedToEmail: email,
		Status:          task.Status(status),
		Priority:        task.Priority(priority),
		DueDate:         dueDate,
		TimeLogged:      timeLogged,
		CreatedBy:       createdBy,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func scanJoinedTask(row pgx.Row) (*task.Task, error) {
	var (
		id             string
		title          string
		desc           string
		assignedTo     string
		email          string
		status         string
		priority       string
		dueDate        time.Time
		timeLogged     int
		createdBy      string
		createdAt      time.Time
		updatedAt      time.Time
		assigneeID     string
		assigneeName   string
		assigneeEmail  string
		assigneeDepart sql.NullString
	)

	if err := row.Scan(
		&id,
		&title,
		&desc,
		&assignedTo,
		&email,
		&status,
		&priority,
		&dueDate,
		&timeLogged,
		&createdBy,
		&createdAt,
		&updatedAt,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
		&assigneeDepart,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	return &task.Task{
		ID:              id,
		Title:           title,
		Description:     desc,
		AssignedTo:      assignedTo,
		AssignedToEmail: email,
		Status:          task.Status(status),
		Priority:        task.Priority(priority),
		DueDate:         dueDate,
		TimeLogged:      timeLogged,
		CreatedBy:       createdBy,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Assignee: &task.Assignee{
			ID:         assigneeID,
			Name:       assigneeName,
			Email:      assigneeEmail,
			Department: nullStringPtr(assigneeDepart),
		},
	}, nil
}

func scanAssignee(row pgx.Row) (*task.Assignee, error) {
	var (
		id         string
		name       string
		email      string
		department sql.NullString
	)

	if err := row.Scan(&id, &name, &email, &department); err != nil {
		return nil, err
	}

	return &task.Assignee{
		ID:         id,
		Name:       name,
		Email:      email,
		Department: nullStringPtr(department),
	}, nil
}

func translateTaskPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return task.ErrTaskNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return task.ErrEmployeeNotFound
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "tasks_time_logged_check":
				return task.ErrInvalidTimeLogged
			case "tasks_status_check":
				return task.ErrInvalidStatus
			case "tasks_priority_check":
				return task.ErrInvalidPriority
			default:
				return err
			}
		}
	}

	return err
}
