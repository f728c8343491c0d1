package domain

import "errors"

// 业务错误，由 handler 层映射为 HTTP 状态码
var (
	ErrMissingCredentials = errors.New("username and password required")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrOfferNotFound      = errors.New("offer not found")
	// ErrNotOfferOwner 故意不区分“非本人”与“不存在”，避免向非属主确认报盘存在
	ErrNotOfferOwner = errors.New("unauthorized or offer not found")
)
