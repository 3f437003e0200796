package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or missing access token")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrInvalidRole             = errors.New("invalid role")
)
