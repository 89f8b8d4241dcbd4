package util

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("invalid or missing input")
	ErrConflict          = errors.New("an open connection request already exists for this counselor")
	ErrInvalidTransition = errors.New("connection is not in a state that allows this action")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrUserNotFound      = errors.New("用户不存在")
)
