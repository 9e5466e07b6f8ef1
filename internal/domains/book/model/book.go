package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book - Domain Entity (from database)
type Book struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	Discount   *decimal.Decimal `json:"discount"`
	AuthorName string           `json:"author_name"`
	OwnerID    *uuid.UUID       `json:"owner_id"`
	// Rating là average rate đã làm tròn 1 chữ số, nil khi chưa có rate nào
	Rating *decimal.Decimal `json:"rating"`

	// Joined from users, read only
	OwnerName *string `json:"-"`
}

// Reader là user có relation với book
type Reader struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RelationRow là một dòng của batched query relations JOIN users
type RelationRow struct {
	BookID    int64
	UserID    uuid.UUID
	Like      bool
	FirstName string
	LastName  string
}

// BookProjection là read model trả về cho client.
// Decimal được format sẵn thành string: price 2 chữ số, rating 1 chữ số.
type BookProjection struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Price             string   `json:"price"`
	AuthorName        string   `json:"author_name"`
	OwnerName         *string  `json:"owner_name"`
	Rating            *string  `json:"rating"`
	PriceWithDiscount *string  `json:"price_with_discount"`
	CountLikes        int      `json:"count_likes"`
	Readers           []Reader `json:"readers"`
}

// ListBooksResponse - page of projections
type ListBooksResponse struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []BookProjection `json:"results"`
}
