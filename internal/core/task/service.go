package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Caller は操作の呼び出し元です。Role は認可ポリシーで導出済みのもの。
type Caller struct {
	ExternalID string
	Role       authz.Role
}

// Service はタスクに関するユースケースをまとめます。更新はロールごとに
// 許可フィールドが異なります。管理者は全フィールド、担当社員は自分の
// タスクの状態と作業時間のみです。
type Service struct {
	repo      Repository
	directory AssigneeDirectory
	clock     Clock
	tx        TransactionManager
}

// UseCase はタスクユースケースの公開インターフェースです。
type UseCase interface {
	CreateTask(ctx context.Context, caller Caller, in CreateTaskInput) (*Task, error)
	UpdateTask(ctx context.Context, caller Caller, in UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, caller Caller, id string) error
	GetTask(ctx context.Context, caller Caller, id string) (*Task, error)
	ListTasks(ctx context.Context, caller Caller) ([]*Task, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, directory AssigneeDirectory, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, directory: directory, clock: clock, tx: tx}
}

// CreateTaskInput はタスク作成時の入力です。
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	Priority    *Priority
	DueDate     time.Time
}

// UpdateTaskInput はタスク更新時の入力です。nil のフィールドは変更しません。
// 担当社員からの呼び出しでは Status と TimeLogged 以外は無視されます。
type UpdateTaskInput struct {
	ID          string
	Title       *string
	Description *string
	AssignedTo  *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	TimeLogged  *int
}

// CreateTask は新しいタスクを作成します。管理者のみ実行できます。
// 担当者のメールアドレスをタスクへ非正規化して保持します。
func (s *Service) CreateTask(ctx context.Context, caller Caller, in CreateTaskInput) (*Task, error) {
	if err := authz.RequireAdmin(caller.Role); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrInvalidDescription
	}

	assignedTo := strings.TrimSpace(in.AssignedTo)
	if assignedTo == "" {
		return nil, ErrInvalidAssignee
	}

	if in.DueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	priority := PriorityMedium
	if in.Priority != nil {
		if !isValidPriority(*in.Priority) {
			return nil, ErrInvalidPriority
		}
		priority = *in.Priority
	}

	var created *Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		assignee, err := s.directory.FindAssigneeByID(txCtx, assignedTo)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Task{
			Title:           title,
			Description:     description,
			AssignedTo:      assignee.ID,
			AssignedToEmail: assignee.Email,
			Status:          StatusToDo,
			Priority:        priority,
			DueDate:         in.DueDate.UTC(),
			TimeLogged:      0,
			CreatedBy:       caller.ExternalID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTask はタスクを更新します。管理者は全フィールドと担当者変更が可能で、
// 担当者変更時は新しい担当者のメールアドレスを再計算します。担当社員は
// 自分のタスクに限り Status と TimeLogged だけを変更できます。
func (s *Service) UpdateTask(ctx context.Context, caller Caller, in UpdateTaskInput) (*Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if caller.Role == authz.RoleAdmin {
			if err := s.applyAdminPatch(txCtx, existing, in); err != nil {
				return err
			}
		} else {
			if err := s.ensureOwnedByCaller(txCtx, caller, existing); err != nil {
				return err
			}
			if err := applyAssigneePatch(existing, in); err != nil {
				return err
			}
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTask はタスクを削除します。管理者のみ実行できます。
func (s *Service) DeleteTask(ctx context.Context, caller Caller, id string) error {
	if err := authz.RequireAdmin(caller.Role); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetTask はタスクを取得します。管理者以外は自分のタスクのみ参照できます。
func (s *Service) GetTask(ctx context.Context, caller Caller, id string) (*Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Task
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if caller.Role != authz.RoleAdmin {
			if err := s.ensureOwnedByCaller(txCtx, caller, found); err != nil {
				return err
			}
		}

		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListTasks はタスクの一覧を作成日時の降順で返します。管理者には全件を
// 担当者付きで、担当社員には自分のタスクだけを返します。
func (s *Service) ListTasks(ctx context.Context, caller Caller) ([]*Task, error) {
	var tasks []*Task
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if caller.Role == authz.RoleAdmin {
			result, err := s.repo.ListAll(txCtx)
			if err != nil {
				return err
			}
			tasks = result
			return nil
		}

		self, err := s.directory.FindAssigneeByExternalID(txCtx, caller.ExternalID)
		if err != nil {
			return err
		}

		result, err := s.repo.ListByAssignee(txCtx, self.ID)
		if err != nil {
			return err
		}
		tasks = result
		return nil
	}); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *Service) applyAdminPatch(ctx context.Context, existing *Task, in UpdateTaskInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return ErrInvalidTitle
		}
		existing.Title = title
	}

	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return ErrInvalidDescription
		}
		existing.Description = description
	}

	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return ErrInvalidStatus
		}
		existing.Status = *in.Status
	}

	if in.Priority != nil {
		if !isValidPriority(*in.Priority) {
			return ErrInvalidPriority
		}
		existing.Priority = *in.Priority
	}

	if in.DueDate != nil {
		if in.DueDate.IsZero() {
			return ErrInvalidDueDate
		}
		existing.DueDate = in.DueDate.UTC()
	}

	if in.AssignedTo != nil && *in.AssignedTo != existing.AssignedTo {
		assignee, err := s.directory.FindAssigneeByID(ctx, *in.AssignedTo)
		if err != nil {
			return err
		}
		existing.AssignedTo = assignee.ID
		existing.AssignedToEmail = assignee.Email
	}

	return nil
}

func applyAssigneePatch(existing *Task, in UpdateTaskInput) error {
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return ErrInvalidStatus
		}
		existing.Status = *in.Status
	}

	if in.TimeLogged != nil {
		if *in.TimeLogged < 0 {
			return ErrInvalidTimeLogged
		}
		existing.TimeLogged = *in.TimeLogged
	}

	return nil
}

func (s *Service) ensureOwnedByCaller(ctx context.Context, caller Caller, t *Task) error {
	self, err := s.directory.FindAssigneeByExternalID(ctx, caller.ExternalID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return authz.ErrForbidden
		}
		return err
	}
	if t.AssignedTo != self.ID {
		return authz.ErrForbidden
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusToDo, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	default:
		return false
	}
}

func isValidPriority(priority Priority) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
