package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByExternalID(ctx context.Context, externalID string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}

// TaskPurger は社員削除時に担当タスクをまとめて取り除きます。
// タスク永続化側が実装します。
type TaskPurger interface {
	DeleteByAssignee(ctx context.Context, employeeID string) (int64, error)
}
