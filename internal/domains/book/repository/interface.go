package repository

import (
	"context"

	"book-catalog/internal/domains/book/model"
)

// RepositoryInterface - Định nghĩa data access methods
type RepositoryInterface interface {
	// ListBooks trả về page books (owner name đã join) và tổng số book khớp filter
	ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error)
	// ListRelationRows - một query cho toàn bộ relations + reader names của các book
	ListRelationRows(ctx context.Context, bookIDs []int64) ([]model.RelationRow, error)
	// GetBookByID returns model.ErrBookNotFound nếu không tồn tại
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, b *model.Book) error
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int64) error
}
