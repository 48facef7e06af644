package domain

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrStateNotFound      = errors.New("state not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrUserExists         = errors.New("user already exists")
)
