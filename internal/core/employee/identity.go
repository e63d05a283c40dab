package employee

import "context"

// CreateAccountInput は ID プロバイダーのアカウント作成入力です。
type CreateAccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// IdentityProvider は外部 ID プロバイダーのアカウント管理の抽象です。
// セッションの発行と検証はプロバイダー側の責務で、ここでは扱いません。
type IdentityProvider interface {
	// CreateAccount はアカウントを作成し、その外部 ID を返します。
	CreateAccount(ctx context.Context, in CreateAccountInput) (string, error)
	UpdateAccount(ctx context.Context, externalID, firstName, lastName string) error
	DeleteAccount(ctx context.Context, externalID string) error
}
