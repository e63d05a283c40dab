package task

import "time"

// Status はタスクの進行状態を表します。
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusBlocked    Status = "Blocked"
)

// Priority はタスクの優先度を表します。
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Task はタスクエンティティです。AssignedToEmail は割り当て時点の担当者
// メールアドレスの非正規化コピーで、担当者変更時にのみ更新されます。
type Task struct {
	ID              string
	Title           string
	Description     string
	AssignedTo      string
	AssignedToEmail string
	Status          Status
	Priority        Priority
	DueDate         time.Time
	TimeLogged      int
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Assignee        *Assignee
}

// Assignee は担当社員のスナップショットです。管理者向けの一覧や詳細で
// タスクに結合されます。
type Assignee struct {
	ID         string
	Name       string
	Email      string
	Department *string
}
