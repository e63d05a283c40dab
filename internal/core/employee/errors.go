package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrInvalidEmail       = errors.New("employee: invalid email")
	ErrInvalidName        = errors.New("employee: invalid name")
	ErrInvalidPassword    = errors.New("employee: invalid password")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrEmailAlreadyExists = errors.New("employee: email already exists")
	ErrIdentityProvider   = errors.New("employee: identity provider request failed")
)
