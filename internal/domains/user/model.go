package user

import "github.com/google/uuid"

// User là bản read-only của tài khoản; việc tạo/sửa user thuộc identity provider
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
}
