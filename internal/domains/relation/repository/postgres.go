package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"book-catalog/internal/domains/relation/model"
	"book-catalog/pkg/database"
)

const (
	foreignKeyViolation = "23503"
	userForeignKey      = "user_book_relations_user_id_fkey"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresTx{tx: tx})
	})
}

func (r *postgresRepository) ListBookIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list book ids failed: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect book ids failed: %w", err)
	}
	return ids, nil
}

// ============================================
// TRANSACTION
// ============================================

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) LockBook(ctx context.Context, bookID int64) error {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("lock book failed: %w", err)
	}
	return nil
}

// GetOrCreate: INSERT ... ON CONFLICT DO NOTHING rồi SELECT FOR UPDATE,
// nên hai request đồng thời chỉ tạo một dòng
func (t *postgresTx) GetOrCreate(ctx context.Context, userID uuid.UUID, bookID int64) (*model.Relation, bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO user_book_relations (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, book_id) DO NOTHING
	`, userID, bookID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == userForeignKey {
			return nil, false, model.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("insert relation failed: %w", err)
	}
	created := tag.RowsAffected() == 1

	rel := &model.Relation{}
	var rate *int16
	err = t.tx.QueryRow(ctx, `
		SELECT id, user_id, book_id, "like", in_bookmarks, rate
		FROM user_book_relations
		WHERE user_id = $1 AND book_id = $2
		FOR UPDATE
	`, userID, bookID).Scan(&rel.ID, &rel.UserID, &rel.BookID, &rel.Like, &rel.InBookmarks, &rate)
	if err != nil {
		return nil, false, fmt.Errorf("select relation failed: %w", err)
	}
	rel.Rate = fromSmallint(rate)

	return rel, created, nil
}

func (t *postgresTx) Update(ctx context.Context, rel *model.Relation) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE user_book_relations
		SET "like" = $2, in_bookmarks = $3, rate = $4
		WHERE id = $1
	`, rel.ID, rel.Like, rel.InBookmarks, rel.Rate)
	if err != nil {
		return fmt.Errorf("update relation failed: %w", err)
	}
	return nil
}

func (t *postgresTx) ListRates(ctx context.Context, bookID int64) ([]*int, error) {
	rows, err := t.tx.Query(ctx, `SELECT rate FROM user_book_relations WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list rates failed: %w", err)
	}

	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*int, error) {
		var v *int16
		err := row.Scan(&v)
		return fromSmallint(v), err
	})
	if err != nil {
		return nil, fmt.Errorf("collect rates failed: %w", err)
	}
	return rates, nil
}

func (t *postgresTx) SetBookRating(ctx context.Context, bookID int64, rating *decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx, `UPDATE books SET rating = $2 WHERE id = $1`, bookID, rating)
	if err != nil {
		return fmt.Errorf("set book rating failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func fromSmallint(v *int16) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
