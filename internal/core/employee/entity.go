package employee

import "time"

// Role は社員のロールを表します。
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Employee は社員エンティティです。ExternalID は ID プロバイダー側の
// アカウント識別子で、両システムの対応付けに使います。
type Employee struct {
	ID         string
	ExternalID string
	Email      string
	Name       string
	Role       Role
	Department *string
	Position   *string
	HireDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
