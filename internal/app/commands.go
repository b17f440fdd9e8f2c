package app

import (
	"context"
	"unicode/utf8"

	"pollen_tracker/internal/domain"
)

// Column length caps from the allergy_reviews schema.
const (
	maxPollenTypeLen = 50
	maxSeverityLen   = 20
)

type SubmitService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewSubmitService(r domain.ReviewRepository, cache domain.Cache) *SubmitService {
	return &SubmitService{repo: r, cache: cache}
}

// CreateReview validates the submission against the schema contract, stores
// it and evicts the list caches the new row belongs in. The database enforces
// the same constraints, so reviews written through other paths stay honest.
func (s *SubmitService) CreateReview(ctx context.Context, nr domain.NewReview) (domain.Review, error) {
	if err := validateNewReview(nr); err != nil {
		return domain.Review{}, err
	}

	rv, err := s.repo.InsertReview(ctx, nr)
	if err != nil {
		return domain.Review{}, err
	}

	if s.cache != nil {
		s.invalidateLists(ctx, rv.PollenType)
	}
	return rv, nil
}

// validateNewReview checks presence of required fields and the varchar caps.
// Coordinate ranges are deliberately not checked: the schema does not enforce
// them and callers own that contract.
func validateNewReview(nr domain.NewReview) error {
	if nr.CenterLat == nil {
		return &domain.FieldError{Field: "center_lat", Reason: domain.ReasonRequired}
	}
	if nr.CenterLng == nil {
		return &domain.FieldError{Field: "center_lng", Reason: domain.ReasonRequired}
	}
	if nr.RadiusKm == nil {
		return &domain.FieldError{Field: "radius_km", Reason: domain.ReasonRequired}
	}
	if nr.PollenType == nil {
		return &domain.FieldError{Field: "pollen_type", Reason: domain.ReasonRequired}
	}
	if nr.Severity == nil {
		return &domain.FieldError{Field: "severity", Reason: domain.ReasonRequired}
	}
	if utf8.RuneCountInString(*nr.PollenType) > maxPollenTypeLen {
		return &domain.FieldError{Field: "pollen_type", Reason: domain.ReasonTooLong}
	}
	if utf8.RuneCountInString(*nr.Severity) > maxSeverityLen {
		return &domain.FieldError{Field: "severity", Reason: domain.ReasonTooLong}
	}
	return nil
}

// invalidate the most common list cache variants
func (s *SubmitService) invalidateLists(ctx context.Context, pollenType string) {
	// The API default is limit=50; clear a couple more common limits too.
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, recentListKey(lim))
		_ = s.cache.Del(ctx, typeListKey(pollenType, lim))
	}
}
