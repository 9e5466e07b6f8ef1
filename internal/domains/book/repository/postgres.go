package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/domains/book/model"
)

// PostgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const bookColumns = `
	b.id, b.name, b.price, b.discount, b.author_name, b.owner_id, b.rating,
	u.username AS owner_name`

// orderColumns - ordering term -> SQL, id luôn là tiebreak cuối
var orderColumns = map[string]string{
	"price":        "b.price ASC",
	"-price":       "b.price DESC",
	"author_name":  "b.author_name ASC",
	"-author_name": "b.author_name DESC",
}

// ============================================
// LIST BOOKS
// ============================================

func (r *postgresRepository) ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error) {
	whereClause, args := buildWhereClause(req)

	total, err := r.countBooks(ctx, whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Book{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN users u ON u.id = b.owner_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, bookColumns, whereClause, buildOrderBy(req.Ordering), len(args)+1, len(args)+2)

	args = append(args, req.PageSize, req.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books query failed: %w", err)
	}

	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, 0, fmt.Errorf("collect rows failed: %w", err)
	}

	return books, total, nil
}

// buildWhereClause - Construct WHERE clause dynamically
func buildWhereClause(req model.ListBooksRequest) (string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if req.Price != nil {
		args = append(args, *req.Price)
		conditions = append(conditions, fmt.Sprintf("b.price = $%d", len(args)))
	}

	// mỗi từ phải match name hoặc author_name, các từ AND với nhau
	for _, term := range strings.Fields(req.Search) {
		args = append(args, "%"+escapeLike(term)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(b.name ILIKE $%d OR b.author_name ILIKE $%d)", n, n))
	}

	return strings.Join(conditions, " AND "), args
}

func buildOrderBy(ordering []string) string {
	parts := make([]string, 0, len(ordering)+1)
	for _, term := range ordering {
		if col, ok := orderColumns[term]; ok {
			parts = append(parts, col)
		}
	}
	parts = append(parts, "b.id ASC")
	return strings.Join(parts, ", ")
}

// escapeLike escape ký tự đặc biệt của LIKE (escape char mặc định là backslash)
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postgresRepository) countBooks(ctx context.Context, whereClause string, args []interface{}) (int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM books b WHERE %s`, whereClause)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return total, nil
}

// ============================================
// RELATIONS (batched)
// ============================================

func (r *postgresRepository) ListRelationRows(ctx context.Context, bookIDs []int64) ([]model.RelationRow, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT r.book_id, r.user_id, r."like", u.first_name, u.last_name
		FROM user_book_relations r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ANY($1)
		ORDER BY r.book_id, r.id
	`

	rows, err := r.pool.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("list relation rows failed: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RelationRow, error) {
		var rr model.RelationRow
		err := row.Scan(&rr.BookID, &rr.UserID, &rr.Like, &rr.FirstName, &rr.LastName)
		return rr, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect relation rows failed: %w", err)
	}

	return result, nil
}

// ============================================
// CRUD
// ============================================

func (r *postgresRepository) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN users u ON u.id = b.owner_id
		WHERE b.id = $1
	`, bookColumns)

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get book query failed: %w", err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book failed: %w", err)
	}

	return &b, nil
}

func (r *postgresRepository) CreateBook(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (name, price, discount, author_name, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, rating
	`

	err := r.pool.QueryRow(ctx, query, b.Name, b.Price, b.Discount, b.AuthorName, b.OwnerID).
		Scan(&b.ID, &b.Rating)
	if err != nil {
		return fmt.Errorf("insert book failed: %w", err)
	}

	log.Debug().Int64("book_id", b.ID).Msg("[BookRepo] Book created")
	return nil
}

// UpdateBook ghi writable fields; owner_id và rating không đổi qua đường này
func (r *postgresRepository) UpdateBook(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET name = $2, price = $3, discount = $4, author_name = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, b.ID, b.Name, b.Price, b.Discount, b.AuthorName)
	if err != nil {
		return fmt.Errorf("update book failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// DeleteBook - relations bị xóa theo ON DELETE CASCADE
func (r *postgresRepository) DeleteBook(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func scanBook(row pgx.CollectableRow) (model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Price,
		&b.Discount,
		&b.AuthorName,
		&b.OwnerID,
		&b.Rating,
		&b.OwnerName,
	)
	return b, err
}
