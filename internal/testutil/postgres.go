// Package testutil chứa helper cho integration tests chạy với PostgreSQL thật.
// Tests bị skip khi TEST_DATABASE_URL không được set.
package testutil

import (
	"context"
	"net/url"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/infrastructure/database"
	"book-catalog/migrations"
)

// NewPostgresPool migrate schema lên bản mới nhất, xóa sạch data và trả về pool.
// Mỗi test package dùng một postgres schema riêng để go test chạy song song được.
// TEST_DATABASE_URL phải ở dạng URL (postgres://...).
func NewPostgresPool(t *testing.T, schema string) *pgxpool.Pool {
	t.Helper()

	base := os.Getenv("TEST_DATABASE_URL")
	if base == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	admin, err := pgxpool.New(context.Background(), base)
	require.NoError(t, err)
	_, err = admin.Exec(context.Background(), `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{schema}.Sanitize())
	admin.Close()
	require.NoError(t, err)

	u, err := url.Parse(base)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	dsn := u.String()

	mg, err := database.NewMigrator(dsn, migrations.FS)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(),
		`TRUNCATE user_book_relations, books, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

// InsertUser tạo user và trả về id
func InsertUser(t *testing.T, pool *pgxpool.Pool, username, firstName, lastName string, staff bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, first_name, last_name, is_staff) VALUES ($1, $2, $3, $4, $5)`,
		id, username, firstName, lastName, staff)
	require.NoError(t, err)
	return id
}

// InsertBook tạo book và trả về id; price/discount dạng string, vd "25.00"
func InsertBook(t *testing.T, pool *pgxpool.Pool, name, price string, discount *string, author string, owner *uuid.UUID) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO books (name, price, discount, author_name, owner_id)
		 VALUES ($1, $2::numeric, $3::numeric, $4, $5) RETURNING id`,
		name, price, discount, author, owner).Scan(&id)
	require.NoError(t, err)
	return id
}
