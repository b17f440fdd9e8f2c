package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"pollen_tracker/internal/domain"
)

// SeedService bulk-loads reviews, e.g. from an exported JSON file, with a
// bounded number of concurrent inserts. Rows fail independently: a bad record
// is logged and counted, the rest of the batch keeps going.
type SeedService struct {
	repo domain.ReviewRepository
}

func NewSeedService(r domain.ReviewRepository) *SeedService {
	return &SeedService{repo: r}
}

func (s *SeedService) SeedReviews(ctx context.Context, reviews []domain.NewReview, workers int) (inserted, failed int64, err error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var okCount, failCount int64

	for i, nr := range reviews {
		i, nr := i, nr

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return atomic.LoadInt64(&okCount), atomic.LoadInt64(&failCount), err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if _, err := s.repo.InsertReview(ctx, nr); err != nil {
				atomic.AddInt64(&failCount, 1)
				log.Warn().Int("index", i).Err(err).Msg("seed insert failed")
				return
			}
			atomic.AddInt64(&okCount, 1)
		}()
	}

	wg.Wait()
	return atomic.LoadInt64(&okCount), atomic.LoadInt64(&failCount), nil
}
