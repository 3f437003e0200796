package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeCodeExists    = errors.New("employee code already exists")
	ErrInvalidEmploymentType = errors.New("employment type must be monthly, daily or hourly")
	ErrRateRequired          = errors.New("the rate for the employment type must be positive")
	ErrEmployeeNotActive     = errors.New("employee is not active")
)
