package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/moviepicker/movie"
)

// matcher is implemented by filters that can report evaluation failures
type matcher interface {
	Match(m movie.Movie) (bool, error)
}

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the collection size from which evaluation is split
// into chunks across the worker pool
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithLogger sets the logger used to report evaluation failures
func WithLogger(logger zerolog.Logger) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.logger = logger
	}
}

// ConcurrentEvaluator implements Evaluator. Results always keep the
// order of the input collection.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
	logger      zerolog.Logger
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   500,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the movies matching f
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, f Filter, movies []movie.Movie) ([]movie.Movie, error) {
	if len(movies) == 0 {
		return []movie.Movie{}, nil
	}

	// Small collections are not worth the scheduling overhead
	if len(movies) < e.batchSize {
		return e.evaluateChunk(f, movies), nil
	}

	return e.evaluateConcurrent(ctx, f, movies)
}

func (e *ConcurrentEvaluator) evaluateChunk(f Filter, movies []movie.Movie) []movie.Movie {
	matches := make([]movie.Movie, 0, len(movies))
	for _, m := range movies {
		if e.match(f, m) {
			matches = append(matches, m)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) match(f Filter, m movie.Movie) bool {
	mf, ok := f.(matcher)
	if !ok {
		return f.Evaluate(m)
	}

	matched, err := mf.Match(m)
	if err != nil {
		e.logger.Debug().Err(err).Int64("movie_id", m.ID).Msg("Filter evaluation failed, skipping movie")
		return false
	}
	return matched
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, f Filter, movies []movie.Movie) ([]movie.Movie, error) {
	chunkSize := max(len(movies)/e.workerCount, e.batchSize)
	chunkCount := (len(movies) + chunkSize - 1) / chunkSize

	// Each chunk writes to its own slot, so no locking is needed
	results := make([][]movie.Movie, chunkCount)

	var wg sync.WaitGroup
	var submitErr error
	for index := range chunkCount {
		start := index * chunkSize
		chunk := movies[start:min(start+chunkSize, len(movies))]

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			results[index] = e.evaluateChunk(f, chunk)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}

	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	matches := make([]movie.Movie, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}

// Stop stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
