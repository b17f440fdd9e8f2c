package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"pollen_tracker/internal/adapters/observability"
	"pollen_tracker/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// symptomsArg maps a nil slice to SQL NULL so omitted symptoms stay NULL
// in the column rather than becoming an empty array.
func symptomsArg(s []string) any {
	if s == nil {
		return nil
	}
	return pq.Array(s)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertReview(ctx context.Context, nr domain.NewReview) (domain.Review, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, insertReviewSQL,
		valF64(nr.CenterLat),
		valF64(nr.CenterLng),
		valF64(nr.RadiusKm),
		valStr(nr.PollenType),
		valStr(nr.Severity),
		symptomsArg(nr.Symptoms),
		valStr(nr.ReviewText),
		valTime(nr.CreatedAt),
	)

	var id int64
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		err = mapPQError(err)
		observability.ObserveDB("insert_review", err, time.Since(start))
		return domain.Review{}, err
	}
	observability.ObserveDB("insert_review", nil, time.Since(start))

	// RETURNING succeeded, so every NOT NULL column was present.
	rv := domain.Review{
		ID:         id,
		CenterLat:  *nr.CenterLat,
		CenterLng:  *nr.CenterLng,
		RadiusKm:   *nr.RadiusKm,
		PollenType: *nr.PollenType,
		Severity:   *nr.Severity,
		Symptoms:   nr.Symptoms,
		ReviewText: nr.ReviewText,
		CreatedAt:  createdAt,
	}
	return rv, nil
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getReviewSQL, id)
	rv, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			observability.ObserveDB("get_review", nil, time.Since(start))
			return domain.Review{}, domain.ErrNotFound
		}
		observability.ObserveDB("get_review", err, time.Since(start))
		return domain.Review{}, err
	}
	observability.ObserveDB("get_review", nil, time.Since(start))
	return rv, nil
}

func (r *Repo) ListByPollenType(ctx context.Context, pollenType string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return r.listReviews(ctx, "list_by_pollen_type", listByPollenTypeSQL, pollenType, pg.Limit)
}

func (r *Repo) ListRecent(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return r.listReviews(ctx, "list_recent", listRecentSQL, pg.Limit)
}

func (r *Repo) ListInBounds(ctx context.Context, b domain.Bounds, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return r.listReviews(ctx, "list_in_bounds", listInBoundsSQL,
		b.MinLat, b.MaxLat, b.MinLng, b.MaxLng, pg.Limit)
}

func (r *Repo) listReviews(ctx context.Context, op, query string, args ...any) (domain.ReviewsPage, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		observability.ObserveDB(op, err, time.Since(start))
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			observability.ObserveDB(op, err, time.Since(start))
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		observability.ObserveDB(op, err, time.Since(start))
		return domain.ReviewsPage{}, err
	}
	observability.ObserveDB(op, nil, time.Since(start))
	return domain.ReviewsPage{Items: out}, nil
}

func (r *Repo) Summary(ctx context.Context) ([]domain.SummaryRow, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, summarySQL)
	if err != nil {
		observability.ObserveDB("summary", err, time.Since(start))
		return nil, err
	}
	defer rows.Close()

	var out []domain.SummaryRow
	for rows.Next() {
		var sr domain.SummaryRow
		if err := rows.Scan(&sr.PollenType, &sr.Severity, &sr.ReviewCount, &sr.AvgRadiusKm); err != nil {
			observability.ObserveDB("summary", err, time.Since(start))
			return nil, err
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		observability.ObserveDB("summary", err, time.Since(start))
		return nil, err
	}
	observability.ObserveDB("summary", nil, time.Since(start))
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	var symptoms pq.StringArray
	var text sql.NullString

	if err := s.Scan(
		&rv.ID,
		&rv.CenterLat,
		&rv.CenterLng,
		&rv.RadiusKm,
		&rv.PollenType,
		&rv.Severity,
		&symptoms,
		&text,
		&rv.CreatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	if symptoms != nil {
		rv.Symptoms = []string(symptoms)
	}
	if text.Valid {
		t := text.String
		rv.ReviewText = &t
	}
	return rv, nil
}

// mapPQError translates the constraint violations the schema can raise into
// domain errors; anything else passes through untouched.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23502": // not_null_violation
		return &domain.FieldError{Field: pqErr.Column, Reason: domain.ReasonRequired}
	case "22001": // string_data_right_truncation
		return &domain.FieldError{Reason: domain.ReasonTooLong}
	case "22P02": // invalid_text_representation
		return &domain.FieldError{Reason: domain.ReasonType}
	}
	return err
}
