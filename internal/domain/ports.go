package domain

import "context"

type ReviewRepository interface {
	// Write path
	InsertReview(ctx context.Context, nr NewReview) (Review, error)

	// Read paths
	GetReview(ctx context.Context, id int64) (Review, error)
	ListByPollenType(ctx context.Context, pollenType string, pg PageQuery) (ReviewsPage, error)
	ListRecent(ctx context.Context, pg PageQuery) (ReviewsPage, error)
	ListInBounds(ctx context.Context, b Bounds, pg PageQuery) (ReviewsPage, error)
	Summary(ctx context.Context) ([]SummaryRow, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Bounds is a lat/lng bounding box for approximate location lookups.
// No great-circle math here: the store only answers range queries on the
// (center_lat, center_lng) pairs, radius filtering is the caller's problem.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

type PageQuery struct {
	Limit int
}

type ReviewsPage struct {
	Items []Review `json:"items"`
}
