package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"book-catalog/internal/domains/relation/model"
)

// Repository - relation writes chạy trong một transaction do RunInTx quản lý.
// fn trả về lỗi thì toàn bộ thay đổi bị rollback.
type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// ListBookIDs trả về id của mọi book, dùng cho recompute toàn bộ
	ListBookIDs(ctx context.Context) ([]int64, error)
}

// Tx - các thao tác trong một transaction
type Tx interface {
	// LockBook giữ row lock của book tới hết transaction, model.ErrBookNotFound nếu không có
	LockBook(ctx context.Context, bookID int64) error
	// GetOrCreate trả về relation (đã lock) và created = true nếu vừa được tạo
	GetOrCreate(ctx context.Context, userID uuid.UUID, bookID int64) (*model.Relation, bool, error)
	Update(ctx context.Context, rel *model.Relation) error
	// ListRates - rate của mọi relation thuộc book, kể cả null
	ListRates(ctx context.Context, bookID int64) ([]*int, error)
	SetBookRating(ctx context.Context, bookID int64, rating *decimal.Decimal) error
}
