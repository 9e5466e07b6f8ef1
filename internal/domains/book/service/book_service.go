package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/repository"
	user "book-catalog/internal/domains/user"
	"book-catalog/pkg/cache"
	"book-catalog/pkg/logger"
)

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	users    user.Repository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewService - Constructor with DI
func NewService(repo repository.RepositoryInterface, users user.Repository, c cache.Cache, cacheTTL time.Duration) ServiceInterface {
	if c == nil {
		c = cache.Noop{}
	}
	return &BookService{
		repo:     repo,
		users:    users,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// ============================================
// READ
// ============================================

// ListBooks - page of projections, cached per normalized query
func (s *BookService) ListBooks(ctx context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error) {
	// generation phải đọc trước khi query DB
	gen, cacheable := s.generation(ctx)
	cacheKey := req.CacheKey(gen)

	var cached model.ListBooksResponse
	if cacheable && s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	books, total, err := s.repo.ListBooks(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	ids := make([]int64, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}
	rows, err := s.repo.ListRelationRows(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	resp := &model.ListBooksResponse{
		Count:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Results:  model.BuildProjections(books, rows),
	}

	if cacheable {
		s.cacheSet(ctx, cacheKey, resp)
	}
	return resp, nil
}

func (s *BookService) GetBook(ctx context.Context, id int64) (*model.BookProjection, error) {
	gen, cacheable := s.generation(ctx)
	cacheKey := model.DetailCacheKey(id, gen)

	var cached model.BookProjection
	if cacheable && s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	b, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.project(ctx, b)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheSet(ctx, cacheKey, p)
	}
	return p, nil
}

// ============================================
// WRITE
// ============================================

// CreateBook - owner luôn là người tạo, bất kể payload
func (s *BookService) CreateBook(ctx context.Context, actorID uuid.UUID, req model.BookRequest) (*model.BookProjection, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, model.ErrAuthenticationRequired
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := &model.Book{OwnerID: &actor.ID}
	req.ApplyTo(b)

	if err := s.repo.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("book_id", b.ID).Str("owner_id", actor.ID.String()).Msg("Book created")
	s.invalidate(ctx)

	return s.reload(ctx, b.ID)
}

// UpdateBook - PUT, full replace
func (s *BookService) UpdateBook(ctx context.Context, actorID uuid.UUID, id int64, req model.BookRequest) (*model.BookProjection, error) {
	b, err := s.authorize(ctx, http.MethodPut, actorID, id)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.ApplyTo(b)

	return s.save(ctx, b)
}

// PatchBook - PATCH, chỉ field được gửi
func (s *BookService) PatchBook(ctx context.Context, actorID uuid.UUID, id int64, req model.PatchBookRequest) (*model.BookProjection, error) {
	b, err := s.authorize(ctx, http.MethodPatch, actorID, id)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.ApplyTo(b)

	return s.save(ctx, b)
}

func (s *BookService) DeleteBook(ctx context.Context, actorID uuid.UUID, id int64) error {
	if _, err := s.authorize(ctx, http.MethodDelete, actorID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("book_id", id).Str("actor_id", actorID.String()).Msg("Book deleted")
	s.invalidate(ctx)
	return nil
}

// ============================================
// HELPERS
// ============================================

// authorize: 404 trước, rồi mới tới 401/403
func (s *BookService) authorize(ctx context.Context, method string, actorID uuid.UUID, id int64) (*model.Book, error) {
	b, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil && !model.IsSafeMethod(method) {
		return nil, model.ErrAuthenticationRequired
	}

	if !model.CanWrite(method, b, actor) {
		logger.FromContext(ctx).Warn().
			Int64("book_id", id).
			Str("actor_id", actorID.String()).
			Str("method", method).
			Msg("Book write denied")
		return nil, model.ErrPermissionDenied
	}

	return b, nil
}

// resolveActor đọc is_staff từ users, không tin claim trong token
func (s *BookService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.Actor, error) {
	if actorID == uuid.Nil {
		return nil, nil
	}

	u, err := s.users.FindByID(ctx, actorID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, model.ErrAuthenticationRequired
	}
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}

	return &model.Actor{ID: u.ID, IsStaff: u.IsStaff}, nil
}

func (s *BookService) save(ctx context.Context, b *model.Book) (*model.BookProjection, error) {
	if err := s.repo.UpdateBook(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.reload(ctx, b.ID)
}

// reload đọc lại projection từ DB, bỏ qua cache
func (s *BookService) reload(ctx context.Context, id int64) (*model.BookProjection, error) {
	b, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, b)
}

func (s *BookService) project(ctx context.Context, b *model.Book) (*model.BookProjection, error) {
	rows, err := s.repo.ListRelationRows(ctx, []int64{b.ID})
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	p := model.BuildProjection(b, rows)
	return &p, nil
}

// Cache lỗi không làm fail request

// generation trả về cacheable = false khi không đọc được counter, lúc đó bỏ qua cache
func (s *BookService) generation(ctx context.Context) (int64, bool) {
	gen, err := cache.Generation(ctx, s.cache, model.GenerationKey)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (s *BookService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	return found
}

func (s *BookService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *BookService) invalidate(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, model.GenerationKey, model.CacheKeyPattern); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Cache invalidation failed")
	}
}
