package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/domains/book/model"
	user "book-catalog/internal/domains/user"
	"book-catalog/internal/shared/utils"
	"book-catalog/pkg/cache"
)

// ============ FAKES ============

type fakeBookRepo struct {
	mu        sync.Mutex
	books     map[int64]model.Book
	relations []model.RelationRow
	users     map[uuid.UUID]*user.User
	nextID    int64
	listCalls int
	// afterRead chạy một lần, sau khi ListBooks/GetBookByID đã đọc xong dữ liệu
	afterRead func()
}

func newFakeBookRepo(users map[uuid.UUID]*user.User) *fakeBookRepo {
	return &fakeBookRepo{books: map[int64]model.Book{}, users: users}
}

func (r *fakeBookRepo) withOwnerName(b model.Book) model.Book {
	b.OwnerName = nil
	if b.OwnerID != nil {
		if u, ok := r.users[*b.OwnerID]; ok {
			name := u.Username
			b.OwnerName = &name
		}
	}
	return b
}

func (r *fakeBookRepo) runAfterRead() {
	r.mu.Lock()
	hook := r.afterRead
	r.afterRead = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (r *fakeBookRepo) ListBooks(_ context.Context, req model.ListBooksRequest) ([]model.Book, int, error) {
	out := r.listBooks(req)
	r.runAfterRead()
	return out, len(out), nil
}

func (r *fakeBookRepo) listBooks(req model.ListBooksRequest) []model.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	var out []model.Book
	for _, b := range r.books {
		if req.Price != nil && !b.Price.Equal(*req.Price) {
			continue
		}
		out = append(out, r.withOwnerName(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeBookRepo) ListRelationRows(_ context.Context, ids []int64) ([]model.RelationRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.RelationRow
	for _, rr := range r.relations {
		if want[rr.BookID] {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (r *fakeBookRepo) GetBookByID(_ context.Context, id int64) (*model.Book, error) {
	r.mu.Lock()
	b, ok := r.books[id]
	if ok {
		b = r.withOwnerName(b)
	}
	r.mu.Unlock()

	r.runAfterRead()
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &b, nil
}

func (r *fakeBookRepo) CreateBook(_ context.Context, b *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	b.ID = r.nextID
	r.books[b.ID] = *b
	return nil
}

func (r *fakeBookRepo) UpdateBook(_ context.Context, b *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.books[b.ID]
	if !ok {
		return model.ErrBookNotFound
	}
	cur.Name, cur.Price, cur.Discount, cur.AuthorName = b.Name, b.Price, b.Discount, b.AuthorName
	r.books[b.ID] = cur
	return nil
}

func (r *fakeBookRepo) DeleteBook(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

type fakeUserRepo map[uuid.UUID]*user.User

func (f fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if raw, ok := c.data[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	raw, _ := json.Marshal(n)
	c.data[key] = raw
	return n, nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

// ============ SETUP ============

type env struct {
	svc   ServiceInterface
	repo  *fakeBookRepo
	cache *memoryCache
	owner uuid.UUID
	other uuid.UUID
	staff uuid.UUID
	book  int64
}

func setup(t *testing.T) env {
	t.Helper()

	e := env{owner: uuid.New(), other: uuid.New(), staff: uuid.New()}
	users := fakeUserRepo{
		e.owner: {ID: e.owner, Username: "test_username"},
		e.other: {ID: e.other, Username: "test_username2"},
		e.staff: {ID: e.staff, Username: "staff", IsStaff: true},
	}
	e.repo = newFakeBookRepo(users)
	e.cache = newMemoryCache()
	e.svc = NewService(e.repo, users, e.cache, time.Minute)

	b := &model.Book{Name: "Test book 1", Price: decimal.RequireFromString("25"), AuthorName: "Author 1", OwnerID: &e.owner}
	require.NoError(t, e.repo.CreateBook(context.Background(), b))
	e.book = b.ID
	return e
}

// commitRating giả lập một relation write khác đã commit rồi invalidate cache
func (e env) commitRating(id int64, rating string) {
	e.repo.mu.Lock()
	b := e.repo.books[id]
	d := decimal.RequireFromString(rating)
	b.Rating = &d
	e.repo.books[id] = b
	e.repo.mu.Unlock()

	_ = cache.Invalidate(context.Background(), e.cache, model.GenerationKey, model.CacheKeyPattern)
}

func bookReq(name, price, author string) model.BookRequest {
	p := decimal.RequireFromString(price)
	return model.BookRequest{Name: name, Price: &p, AuthorName: author}
}

// ============ TESTS ============

func TestCreateBookForcesOwner(t *testing.T) {
	e := setup(t)

	p, err := e.svc.CreateBook(context.Background(), e.other, bookReq("New", "10", "A"))
	require.NoError(t, err)
	assert.Equal(t, "test_username2", *p.OwnerName)
	assert.Equal(t, "10.00", p.Price)

	_, err = e.svc.CreateBook(context.Background(), uuid.Nil, bookReq("New", "10", "A"))
	assert.ErrorIs(t, err, model.ErrAuthenticationRequired)

	_, err = e.svc.CreateBook(context.Background(), uuid.New(), bookReq("New", "10", "A"))
	assert.ErrorIs(t, err, model.ErrAuthenticationRequired)
}

func TestCreateBookValidation(t *testing.T) {
	e := setup(t)

	_, err := e.svc.CreateBook(context.Background(), e.owner, model.BookRequest{Name: "x"})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "author_name")
}

func TestUpdateBookByNonOwnerIsForbidden(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.UpdateBook(ctx, e.other, e.book, bookReq("Test book 1", "575", "Author 1"))
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	got, err := e.repo.GetBookByID(ctx, e.book)
	require.NoError(t, err)
	assert.Equal(t, "25.00", got.Price.StringFixed(2))
}

func TestUpdateBookByStaff(t *testing.T) {
	e := setup(t)

	p, err := e.svc.UpdateBook(context.Background(), e.staff, e.book, bookReq("Test book 1", "575", "Author 1"))
	require.NoError(t, err)
	assert.Equal(t, "575.00", p.Price)
	assert.Equal(t, "test_username", *p.OwnerName)
}

func TestUpdateBookByOwner(t *testing.T) {
	e := setup(t)

	p, err := e.svc.UpdateBook(context.Background(), e.owner, e.book, bookReq("Renamed", "30", "Author 1"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
}

func TestNotFoundWinsOverPermission(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.UpdateBook(ctx, e.other, 999, bookReq("x", "1", "y"))
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	assert.ErrorIs(t, e.svc.DeleteBook(ctx, uuid.Nil, 999), model.ErrBookNotFound)
	assert.ErrorIs(t, e.svc.DeleteBook(ctx, uuid.Nil, e.book), model.ErrAuthenticationRequired)
}

func TestPermissionCheckedBeforeValidation(t *testing.T) {
	e := setup(t)

	_, err := e.svc.UpdateBook(context.Background(), e.other, e.book, model.BookRequest{})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestPatchBook(t *testing.T) {
	e := setup(t)

	req := model.PatchBookRequest{Discount: utils.Some(decimal.RequireFromString("5"))}
	p, err := e.svc.PatchBook(context.Background(), e.owner, e.book, req)
	require.NoError(t, err)
	assert.Equal(t, "Test book 1", p.Name)
	assert.Equal(t, "20.00", *p.PriceWithDiscount)

	_, err = e.svc.PatchBook(context.Background(), e.other, e.book, req)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestDeleteBook(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.svc.DeleteBook(ctx, e.other, e.book), model.ErrPermissionDenied)
	require.NoError(t, e.svc.DeleteBook(ctx, e.owner, e.book))

	_, err := e.svc.GetBook(ctx, e.book)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestDeleteBookByStaff(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	// cache detail trước khi xóa
	_, err := e.svc.GetBook(ctx, e.book)
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteBook(ctx, e.staff, e.book))

	_, err = e.svc.GetBook(ctx, e.book)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestListBooksUsesCacheAndWritesInvalidate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	req := model.ListBooksRequest{Page: 1, PageSize: model.DefaultPageSize}

	first, err := e.svc.ListBooks(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)

	_, err = e.svc.ListBooks(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, e.repo.listCalls)

	_, err = e.svc.CreateBook(ctx, e.owner, bookReq("Second", "55", "B"))
	require.NoError(t, err)

	second, err := e.svc.ListBooks(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, 2, e.repo.listCalls)
}

func TestListBooksWriteDuringReadIsNotCachedAsFresh(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	req := model.ListBooksRequest{Page: 1, PageSize: model.DefaultPageSize}

	// write commit + invalidate rơi vào giữa lúc đọc DB và lúc ghi cache
	e.repo.afterRead = func() { e.commitRating(e.book, "4.7") }

	first, err := e.svc.ListBooks(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, first.Results[0].Rating)

	second, err := e.svc.ListBooks(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, second.Results[0].Rating)
	assert.Equal(t, "4.7", *second.Results[0].Rating)
}

func TestGetBookWriteDuringReadIsNotCachedAsFresh(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	e.repo.afterRead = func() { e.commitRating(e.book, "3.7") }

	first, err := e.svc.GetBook(ctx, e.book)
	require.NoError(t, err)
	assert.Nil(t, first.Rating)

	second, err := e.svc.GetBook(ctx, e.book)
	require.NoError(t, err)
	require.NotNil(t, second.Rating)
	assert.Equal(t, "3.7", *second.Rating)
}

func TestListBooksFailsOpenOnCacheError(t *testing.T) {
	e := setup(t)
	e.cache.failGet = true

	resp, err := e.svc.ListBooks(context.Background(), model.ListBooksRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestGetBookProjection(t *testing.T) {
	e := setup(t)
	e.repo.relations = []model.RelationRow{
		{BookID: e.book, UserID: e.owner, Like: true, FirstName: "Ivan", LastName: "Petrov"},
		{BookID: e.book, UserID: e.other, Like: true, FirstName: "Anna", LastName: "Smirnova"},
	}

	p, err := e.svc.GetBook(context.Background(), e.book)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CountLikes)
	assert.Len(t, p.Readers, 2)
	assert.Nil(t, p.PriceWithDiscount)
}
