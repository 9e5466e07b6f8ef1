package service

import (
	"context"

	"github.com/google/uuid"

	"book-catalog/internal/domains/book/model"
)

// ServiceInterface - Định nghĩa business logic methods.
// actorID = uuid.Nil nghĩa là anonymous.
type ServiceInterface interface {
	ListBooks(ctx context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error)
	GetBook(ctx context.Context, id int64) (*model.BookProjection, error)
	CreateBook(ctx context.Context, actorID uuid.UUID, req model.BookRequest) (*model.BookProjection, error)
	UpdateBook(ctx context.Context, actorID uuid.UUID, id int64, req model.BookRequest) (*model.BookProjection, error)
	PatchBook(ctx context.Context, actorID uuid.UUID, id int64, req model.PatchBookRequest) (*model.BookProjection, error)
	DeleteBook(ctx context.Context, actorID uuid.UUID, id int64) error
}
