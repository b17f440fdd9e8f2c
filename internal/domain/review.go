package domain

import "time"

// Review is one user-submitted allergy report for a circular area:
// a center point, a radius and what the pollen felt like there.
type Review struct {
	ID         int64     `json:"id"`
	CenterLat  float64   `json:"center_lat"`
	CenterLng  float64   `json:"center_lng"`
	RadiusKm   float64   `json:"radius_km"`
	PollenType string    `json:"pollen_type"` // e.g. grass|tree|ragweed, free-form
	Severity   string    `json:"severity"`    // e.g. low|medium|high, free-form
	Symptoms   []string  `json:"symptoms,omitempty"`
	ReviewText *string   `json:"review_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReview is the caller-supplied part of a review. Required fields are
// pointers so validation can tell "omitted" apart from zero values; CreatedAt
// is optional and defaults to insertion time in the store.
type NewReview struct {
	CenterLat  *float64   `json:"center_lat"`
	CenterLng  *float64   `json:"center_lng"`
	RadiusKm   *float64   `json:"radius_km"`
	PollenType *string    `json:"pollen_type"`
	Severity   *string    `json:"severity"`
	Symptoms   []string   `json:"symptoms,omitempty"`
	ReviewText *string    `json:"review_text,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// SummaryRow is one row of the review_summary view: aggregate stats for a
// (pollen type, severity) pair, recomputed by the database on every read.
type SummaryRow struct {
	PollenType  string  `json:"pollen_type"`
	Severity    string  `json:"severity"`
	ReviewCount int64   `json:"review_count"`
	AvgRadiusKm float64 `json:"avg_radius_km"`
}
