package authz

import "errors"

var (
	ErrUnauthenticated = errors.New("authz: authentication required")
	ErrForbidden       = errors.New("authz: insufficient permissions")
)
