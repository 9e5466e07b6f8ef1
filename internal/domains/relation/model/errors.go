package model

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("invalid book id")
	// ErrUserNotFound - token hợp lệ nhưng user đã bị xóa
	ErrUserNotFound = errors.New("user not found")
)
