package task

import "context"

// Repository はタスク永続化の抽象です。FindByID と ListAll は担当者の
// スナップショットを結合して返します。ListByAssignee は本人向けのため
// 結合しません。
type Repository interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	Update(ctx context.Context, task *Task) (*Task, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Task, error)
	ListAll(ctx context.Context) ([]*Task, error)
	ListByAssignee(ctx context.Context, employeeID string) ([]*Task, error)
	DeleteByAssignee(ctx context.Context, employeeID string) (int64, error)
}

// AssigneeDirectory は担当者の解決を行います。社員テーブルを参照する
// 永続化側が実装します。
type AssigneeDirectory interface {
	FindAssigneeByID(ctx context.Context, id string) (*Assignee, error)
	FindAssigneeByExternalID(ctx context.Context, externalID string) (*Assignee, error)
}
