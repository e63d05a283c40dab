package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
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

// Service は社員に関するユースケースをまとめます。
// アカウントのプロビジョニングと担当タスクのカスケード削除を含みます。
type Service struct {
	repo     Repository
	provider IdentityProvider
	tasks    TaskPurger
	clock    Clock
	tx       TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*DeleteEmployeeResult, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	SyncSelf(ctx context.Context, externalID string) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, provider IdentityProvider, tasks TaskPurger, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, provider: provider, tasks: tasks, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Email      string
	Name       string
	Password   string
	Department *string
	Position   *string
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID         string
	Name       *string
	Department *string
	Position   *string
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// DeleteEmployeeResult は削除処理の結果です。ProviderWarning は
// ID プロバイダー側のアカウント削除に失敗した場合のメッセージで、
// ローカル削除自体は継続されます。
type DeleteEmployeeResult struct {
	RemovedTasks    int64
	ProviderWarning string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// CreateEmployee は ID プロバイダーにアカウントを作成したうえで社員を登録します。
// プロビジョニングが失敗した場合、社員レコードは作成されません。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if strings.TrimSpace(in.Password) == "" {
		return nil, ErrInvalidPassword
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	firstName, lastName := splitName(name)
	externalID, err := s.provider.CreateAccount(ctx, CreateAccountInput{
		Email:     email,
		Password:  in.Password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      string(RoleEmployee),
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	emp := &Employee{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		Role:       RoleEmployee,
		Department: cloneString(in.Department),
		Position:   cloneString(in.Position),
		HireDate:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, emp)
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

// UpdateEmployee は社員情報を更新し、氏名の変更を ID プロバイダーに伝搬します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var (
		updated     *Employee
		nameChanged bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			if name != existing.Name {
				existing.Name = name
				nameChanged = true
			}
		}

		if in.Department != nil {
			existing.Department = cloneString(in.Department)
		}

		if in.Position != nil {
			existing.Position = cloneString(in.Position)
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

	if nameChanged {
		firstName, lastName := splitName(updated.Name)
		if err := s.provider.UpdateAccount(ctx, updated.ExternalID, firstName, lastName); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。順序は ID プロバイダーのアカウント削除、
// 担当タスクの削除、社員レコードの削除。プロバイダー側の失敗は結果として
// 報告しつつローカル削除を続行します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*DeleteEmployeeResult, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	result := &DeleteEmployeeResult{}
	if err := s.provider.DeleteAccount(ctx, existing.ExternalID); err != nil {
		result.ProviderWarning = err.Error()
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		removed, err := s.tasks.DeleteByAssignee(txCtx, existing.ID)
		if err != nil {
			return err
		}
		result.RemovedTasks = removed
		return s.repo.Delete(txCtx, existing.ID)
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全社員を作成日時の降順で返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

// SyncSelf は呼び出し元の外部 ID に対応する社員レコードを返します。
// 見つからなくても新規作成はしません。プロビジョニングは管理者の操作です。
func (s *Service) SyncSelf(ctx context.Context, externalID string) (*Employee, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("external id: %w", ErrInvalidID)
	}
	return s.repo.FindByExternalID(ctx, externalID)
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(trimmed), nil
}

// splitName は表示名を最初の空白で分割します。先頭の語が名、残りを
// 連結したものが姓です。残りが無ければ姓は空になります。
func splitName(full string) (string, string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
