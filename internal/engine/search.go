package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
	"github.com/parcelworks/dealfilter/internal/domain/search"
	"github.com/parcelworks/dealfilter/internal/metrics"
)

// Searcher runs the combination engine across property collections on a
// bounded worker pool, then sorts, ranks, and paginates.
type Searcher struct {
	applier Applier
	logger  *zap.Logger
	workers int
}

// NewSearcher creates a search orchestrator. workers <= 0 sizes the pool to
// the available cores.
func NewSearcher(applier Applier, logger *zap.Logger, workers int) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Searcher{applier: applier, logger: logger, workers: workers}
}

// Execute evaluates the request against every property, retains the passing
// ones, stable-sorts descending by combined score, assigns 1-based ranks,
// and slices the requested page. Evaluation order across properties is
// unspecified; ordering exists only in the final sort. A cancelled context
// stops the evaluation early and returns the context error.
func (s *Searcher) Execute(
	ctx context.Context, properties []*property.Record, req *search.Request,
) (*search.Response, error) {
	start := time.Now()

	opts := Options{
		Mode:          req.Mode(),
		MinMatchCount: req.MinMatchCount(),
		MinScore:      req.MinScore(),
		UseCache:      req.UseCache(),
	}

	combined, err := s.evaluateAll(ctx, properties, req.Filters(), opts)
	if err != nil {
		return nil, err
	}

	passing := combined[:0]
	for _, c := range combined {
		if c.Passes {
			passing = append(passing, c)
		}
	}

	// Stable sort keeps input order among equal scores.
	sort.SliceStable(passing, func(i, j int) bool {
		return passing[i].CombinedScore > passing[j].CombinedScore
	})

	total := len(passing)
	offset := req.Offset()
	if offset > total {
		offset = total
	}
	end := offset + req.Limit()
	if end > total {
		end = total
	}

	page := make([]search.Ranked, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, search.Ranked{Result: passing[i], Rank: i + 1})
	}

	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())
	metrics.PropertiesEvaluated.Add(float64(len(properties)))

	s.logger.Debug("search executed",
		zap.Int("properties", len(properties)),
		zap.Int("passing", total),
		zap.Int("filters", len(req.Filters())),
		zap.String("mode", string(req.Mode())),
		zap.Duration("elapsed", elapsed),
	)

	return &search.Response{
		Results:         page,
		Total:           total,
		Offset:          offset,
		Limit:           req.Limit(),
		ExecutionTimeMs: elapsed.Milliseconds(),
		AppliedFilters:  req.FilterIDs(),
	}, nil
}

// evaluateAll fans property evaluation out over the worker pool. Results
// land in an index-addressed slice, so workers share no mutable state
// beyond the result cache inside the applier.
func (s *Searcher) evaluateAll(
	ctx context.Context, properties []*property.Record, active []filter.Active, opts Options,
) ([]filter.Combined, error) {
	results := make([]filter.Combined, len(properties))

	workers := s.workers
	if workers > len(properties) {
		workers = len(properties)
	}
	if workers <= 1 {
		for i, p := range properties {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("search cancelled: %w", err)
			}
			results[i] = Combine(s.applier, p, active, opts)
		}
		return results, nil
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = Combine(s.applier, properties[i], active, opts)
			}
		}()
	}

	var err error
feed:
	for i := range properties {
		select {
		case indexes <- i:
		case <-ctx.Done():
			err = fmt.Errorf("search cancelled: %w", ctx.Err())
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}
