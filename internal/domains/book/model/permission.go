package model

import (
	"net/http"

	"github.com/google/uuid"
)

// Actor là user thực hiện request, nil nghĩa là anonymous
type Actor struct {
	ID      uuid.UUID
	IsStaff bool
}

// IsSafeMethod - GET, HEAD, OPTIONS không thay đổi state
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanWrite: safe methods luôn được phép; còn lại cần owner hoặc staff.
// Book không có owner (owner đã bị xóa) chỉ staff mới sửa được.
func CanWrite(method string, b *Book, actor *Actor) bool {
	if IsSafeMethod(method) {
		return true
	}
	if actor == nil || actor.ID == uuid.Nil {
		return false
	}
	if actor.IsStaff {
		return true
	}
	return b.OwnerID != nil && *b.OwnerID == actor.ID
}
