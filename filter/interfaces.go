package filter

import (
	"context"

	"github.com/s0up4200/moviepicker/movie"
)

// Filter is a boolean predicate over a movie
type Filter interface {
	// Evaluate checks if a movie matches the filter criteria
	Evaluate(m movie.Movie) bool
}

// CompiledFilter is a filter expression compiled and ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler is a Compiler that keeps compiled programs around
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator applies a filter to a collection
type Evaluator interface {
	// Evaluate returns the matching movies in collection order
	Evaluate(ctx context.Context, f Filter, movies []movie.Movie) ([]movie.Movie, error)
}

// WorkerPool runs submitted work on a bounded set of goroutines
type WorkerPool interface {
	// Submit queues work, blocking until a slot is free or ctx is done
	Submit(ctx context.Context, work func()) error

	// Stop waits for queued work to finish
	Stop(ctx context.Context) error
}
