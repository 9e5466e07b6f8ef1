package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookmodel "book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/relation/model"
	"book-catalog/internal/domains/relation/repository"
	user "book-catalog/internal/domains/user"
	"book-catalog/pkg/cache"
	"book-catalog/pkg/logger"
)

type RelationService struct {
	repo  repository.Repository
	users user.Repository
	cache cache.Cache
}

func NewService(repo repository.Repository, users user.Repository, c cache.Cache) ServiceInterface {
	if c == nil {
		c = cache.Noop{}
	}
	return &RelationService{repo: repo, users: users, cache: c}
}

func (s *RelationService) GetOrCreateRelation(ctx context.Context, userID uuid.UUID, bookID int64) (*model.Relation, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	var rel *model.Relation
	var created bool
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockBook(ctx, bookID); err != nil {
			return err
		}

		var err error
		rel, created, err = tx.GetOrCreate(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if created {
			logger.FromContext(ctx).Debug().Int64("book_id", bookID).Str("user_id", userID.String()).Msg("Relation created")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// relation mới làm thay đổi readers của book
	if created {
		s.invalidate(ctx)
	}
	return rel, nil
}

// UpdateRelation - check user -> validate -> lock book -> get-or-create -> apply -> recompute nếu rate đổi.
// Tất cả chạy trong một transaction, recompute lỗi thì relation write cũng rollback.
func (s *RelationService) UpdateRelation(ctx context.Context, userID uuid.UUID, bookID int64, req model.RelationRequest, full bool) (*model.Relation, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(full); err != nil {
		return nil, err
	}

	var rel *model.Relation
	var rating *decimal.Decimal
	var rateChanged bool

	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockBook(ctx, bookID); err != nil {
			return err
		}

		var err error
		rel, _, err = tx.GetOrCreate(ctx, userID, bookID)
		if err != nil {
			return err
		}

		rateChanged = req.ApplyTo(rel)
		if err := tx.Update(ctx, rel); err != nil {
			return err
		}

		if !rateChanged {
			return nil
		}
		rating, err = recompute(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	l := logger.FromContext(ctx).Info().
		Int64("book_id", bookID).
		Str("user_id", userID.String()).
		Bool("rate_changed", rateChanged)
	if rateChanged {
		l = l.Str("rating", ratingString(rating))
	}
	l.Msg("Relation updated")

	s.invalidate(ctx)
	return rel, nil
}

func (s *RelationService) RecomputeRating(ctx context.Context, bookID int64) (*decimal.Decimal, error) {
	var rating *decimal.Decimal
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockBook(ctx, bookID); err != nil {
			return err
		}
		var err error
		rating, err = recompute(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rating, nil
}

// RecomputeAll tính lại rating cho từng book, mỗi book một transaction.
// Book bị xóa giữa chừng được bỏ qua.
func (s *RelationService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListBookIDs(ctx)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if err := tx.LockBook(ctx, id); err != nil {
				return err
			}
			_, err := recompute(ctx, tx, id)
			return err
		})
		if errors.Is(err, model.ErrBookNotFound) {
			continue
		}
		if err != nil {
			return done, fmt.Errorf("recompute book %d: %w", id, err)
		}
		done++
	}

	s.invalidate(ctx)
	return done, nil
}

// checkUser - token còn hạn nhưng user đã bị xóa thì trả ErrUserNotFound
func (s *RelationService) checkUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	return nil
}

// recompute đọc rates, tính average và ghi books.rating; caller phải giữ book lock
func recompute(ctx context.Context, tx repository.Tx, bookID int64) (*decimal.Decimal, error) {
	rates, err := tx.ListRates(ctx, bookID)
	if err != nil {
		return nil, err
	}

	rating := model.ComputeRating(rates)
	if err := tx.SetBookRating(ctx, bookID, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *RelationService) invalidate(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, bookmodel.GenerationKey, bookmodel.CacheKeyPattern); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Cache invalidation failed")
	}
}

func ratingString(d *decimal.Decimal) string {
	if d == nil {
		return "null"
	}
	return d.StringFixed(1)
}
