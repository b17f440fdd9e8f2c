package app

import (
	"context"
	"fmt"
	"time"

	"pollen_tracker/internal/domain"
)

// Cache keys. Shared with the write side so invalidation always matches.
func reviewKey(id int64) string               { return fmt.Sprintf("review:%d", id) }
func typeListKey(pt string, limit int) string { return fmt.Sprintf("reviews:type:%s:%d", pt, limit) }
func recentListKey(limit int) string          { return fmt.Sprintf("reviews:recent:%d", limit) }

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires reads through an optional cache; pass a nil cache to
// read straight from the store.
func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	key := reviewKey(id)
	if s.cache != nil {
		var rv domain.Review
		if ok, _ := s.cache.Get(ctx, key, &rv); ok {
			return rv, nil
		}
	}
	rv, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rv, int(s.cacheTTL.Seconds()))
	}
	return rv, nil
}

func (s *QueryService) ListByPollenType(ctx context.Context, pollenType string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return s.cachedList(ctx, typeListKey(pollenType, pg.Limit), func() (domain.ReviewsPage, error) {
		return s.repo.ListByPollenType(ctx, pollenType, pg)
	})
}

func (s *QueryService) ListRecent(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return s.cachedList(ctx, recentListKey(pg.Limit), func() (domain.ReviewsPage, error) {
		return s.repo.ListRecent(ctx, pg)
	})
}

// ListInBounds is never cached: every map viewport produces a distinct box,
// so keys would pile up without ever being hit again.
func (s *QueryService) ListInBounds(ctx context.Context, b domain.Bounds, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return s.repo.ListInBounds(ctx, b, pg)
}

// Summary always reads the review_summary view directly. The view is not
// materialized and rows can be removed out-of-band, so any caching here would
// show stale aggregates.
func (s *QueryService) Summary(ctx context.Context) ([]domain.SummaryRow, error) {
	return s.repo.Summary(ctx)
}

func (s *QueryService) cachedList(ctx context.Context, key string, load func() (domain.ReviewsPage, error)) (domain.ReviewsPage, error) {
	if s.cache != nil {
		var out domain.ReviewsPage
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	page, err := load()
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	if s.cache != nil {
		// copy slice to avoid aliasing the repo's backing array (prevents callers from mutating cached value)
		cp := deepCopyReviewsPage(page)
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
		return cp, nil
	}
	return page, nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	var out domain.ReviewsPage
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Review, n)
		copy(out.Items, in.Items)
	}
	return out
}
