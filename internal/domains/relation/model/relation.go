package model

import "github.com/google/uuid"

const (
	MinRate = 1
	MaxRate = 5
)

// Relation - quan hệ của một user với một book, tối đa một dòng cho mỗi cặp (user, book)
type Relation struct {
	ID          int64     `json:"-"`
	UserID      uuid.UUID `json:"-"`
	BookID      int64     `json:"book"`
	Like        bool      `json:"like"`
	InBookmarks bool      `json:"in_bookmarks"`
	Rate        *int      `json:"rate"`
}

// SameRate so sánh hai rate nullable
func SameRate(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
