package model

import "errors"

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrInvalidBookID    = errors.New("invalid book id")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// ErrAuthenticationRequired - write không có user, hoặc token trỏ tới user không còn tồn tại
var ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
