package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"book-catalog/internal/domains/relation/model"
)

// ServiceInterface - relation upsert và rating engine
type ServiceInterface interface {
	GetOrCreateRelation(ctx context.Context, userID uuid.UUID, bookID int64) (*model.Relation, error)
	// UpdateRelation: full = true cho PUT (đủ like, in_bookmarks, rate), false cho PATCH
	UpdateRelation(ctx context.Context, userID uuid.UUID, bookID int64, req model.RelationRequest, full bool) (*model.Relation, error)
	RecomputeRating(ctx context.Context, bookID int64) (*decimal.Decimal, error)
	// RecomputeAll trả về số book đã được tính lại
	RecomputeAll(ctx context.Context) (int, error)
}
