package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pollen_tracker/internal/app"
	"pollen_tracker/internal/domain"
)

func validSubmission() domain.NewReview {
	return domain.NewReview{
		CenterLat:  ptr(40.71),
		CenterLng:  ptr(-74.0),
		RadiusKm:   ptr(2.5),
		PollenType: ptr("grass"),
		Severity:   ptr("high"),
		Symptoms:   []string{"sneezing", "itchy eyes"},
		ReviewText: ptr("rough week around the park"),
	}
}

func TestCreateReview_Valid(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	s := app.NewSubmitService(repo, cache)

	rv, err := s.CreateReview(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rv.ID != 1 || rv.PollenType != "grass" || rv.Severity != "high" {
		t.Fatalf("unexpected review: %+v", rv)
	}
	if len(repo.inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserts))
	}
}

func TestCreateReview_MissingRequiredField(t *testing.T) {
	cases := []struct {
		field string
		strip func(*domain.NewReview)
	}{
		{"center_lat", func(nr *domain.NewReview) { nr.CenterLat = nil }},
		{"center_lng", func(nr *domain.NewReview) { nr.CenterLng = nil }},
		{"radius_km", func(nr *domain.NewReview) { nr.RadiusKm = nil }},
		{"pollen_type", func(nr *domain.NewReview) { nr.PollenType = nil }},
		{"severity", func(nr *domain.NewReview) { nr.Severity = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			repo := &fakeRepo{}
			s := app.NewSubmitService(repo, nil)

			nr := validSubmission()
			tc.strip(&nr)

			_, err := s.CreateReview(context.Background(), nr)
			var fe *domain.FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Field != tc.field || fe.Reason != domain.ReasonRequired {
				t.Fatalf("unexpected field error: %+v", fe)
			}
			if len(repo.inserts) != 0 {
				t.Fatalf("invalid review must not reach the repo")
			}
		})
	}
}

func TestCreateReview_LengthCaps(t *testing.T) {
	repo := &fakeRepo{}
	s := app.NewSubmitService(repo, nil)

	// Exactly at the cap is fine.
	nr := validSubmission()
	nr.PollenType = ptr(strings.Repeat("a", 50))
	if _, err := s.CreateReview(context.Background(), nr); err != nil {
		t.Fatalf("50-char pollen_type should pass, got %v", err)
	}

	// One over fails.
	nr = validSubmission()
	nr.PollenType = ptr(strings.Repeat("a", 51))
	_, err := s.CreateReview(context.Background(), nr)
	var fe *domain.FieldError
	if !errors.As(err, &fe) || fe.Field != "pollen_type" || fe.Reason != domain.ReasonTooLong {
		t.Fatalf("expected pollen_type too_long, got %v", err)
	}

	nr = validSubmission()
	nr.Severity = ptr(strings.Repeat("s", 21))
	_, err = s.CreateReview(context.Background(), nr)
	if !errors.As(err, &fe) || fe.Field != "severity" || fe.Reason != domain.ReasonTooLong {
		t.Fatalf("expected severity too_long, got %v", err)
	}
}

func TestCreateReview_EvictsListCaches(t *testing.T) {
	repo := &fakeRepo{
		page: domain.ReviewsPage{Items: []domain.Review{{ID: 99, PollenType: "grass"}}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)
	s := app.NewSubmitService(repo, cache)

	// Warm the default list caches.
	if _, err := q.ListRecent(context.Background(), domain.PageQuery{Limit: 50}); err != nil {
		t.Fatalf("warm recent: %v", err)
	}
	if _, err := q.ListByPollenType(context.Background(), "grass", domain.PageQuery{Limit: 50}); err != nil {
		t.Fatalf("warm by type: %v", err)
	}

	if _, err := s.CreateReview(context.Background(), validSubmission()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(cache.dels) == 0 {
		t.Fatalf("create must evict list caches")
	}

	// The warmed entries are gone: next reads hit the repo again.
	repo.page.Items[0].PollenType = "tree"
	out, _ := q.ListByPollenType(context.Background(), "grass", domain.PageQuery{Limit: 50})
	if out.Items[0].PollenType != "tree" {
		t.Fatalf("expected fresh list after create, got %+v", out.Items)
	}
}

func TestCreateReview_RepoErrorPassesThrough(t *testing.T) {
	dbErr := &domain.FieldError{Field: "severity", Reason: domain.ReasonTooLong}
	repo := &fakeRepo{insertErr: dbErr}
	s := app.NewSubmitService(repo, nil)

	// Valid per app checks; the store still gets the final say.
	_, err := s.CreateReview(context.Background(), validSubmission())
	var fe *domain.FieldError
	if !errors.As(err, &fe) || fe.Reason != domain.ReasonTooLong {
		t.Fatalf("expected repo error passed through, got %v", err)
	}
}
