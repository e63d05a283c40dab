package authz

import "strings"

// Role は認可判定に用いる呼び出し元のロールです。
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Claims は ID プロバイダーが検証済みセッションに付与する本人情報です。
type Claims struct {
	ExternalID string
	Email      string
	Role       string
}

// Policy はセッションクレームからロールを導出する規則をまとめます。
// 指定管理者メールアドレスの特別扱いを含め、導出はここ一箇所で行います。
type Policy struct {
	adminEmail string
}

// NewPolicy は Policy を生成します。adminEmail は空でも構いません。
func NewPolicy(adminEmail string) *Policy {
	return &Policy{adminEmail: strings.TrimSpace(adminEmail)}
}

// Resolve はクレームからロールを導出します。優先順位:
// (1) 指定管理者メールアドレスと完全一致なら admin、
// (2) ロールクレームが admin なら admin、
// (3) それ以外は employee。
func (p *Policy) Resolve(c Claims) Role {
	if p.adminEmail != "" && c.Email == p.adminEmail {
		return RoleAdmin
	}
	if Role(c.Role) == RoleAdmin {
		return RoleAdmin
	}
	return RoleEmployee
}

// RequireAdmin は admin ロールを要求し、満たさなければ ErrForbidden を返します。
func RequireAdmin(r Role) error {
	if r != RoleAdmin {
		return ErrForbidden
	}
	return nil
}
