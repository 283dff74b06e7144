package service

import "errors"

// 服务层哨兵错误，接口层据此映射 HTTP 状态码
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
)

// validationError 携带字段级提示的校验错误，errors.Is 命中 ErrValidation
type validationError struct {
	msg string
}

func (e validationError) Error() string {
	return e.msg
}

func (e validationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError 创建携带提示的校验错误
func NewValidationError(msg string) error {
	return validationError{msg: msg}
}
