// Package filter narrows and ranks movie collections.
//
// The query pipeline runs up to three stages in order: an optional
// expression filter (expr-lang, see Compiler), the runtime window
// (FilterByDuration) and the genre overlap ranking (FilterByGenres).
package filter

import (
	"context"

	"github.com/s0up4200/moviepicker/movie"
)

// Query selects the pipeline stages to run. Zero values skip a stage.
type Query struct {
	Filter   Filter // expression filter, nil to skip
	Duration int    // target runtime in minutes, 0 to skip
	Genres   string // genre specification, "" to skip
}

// Result is the outcome of a query
type Result struct {
	Movies []movie.Movie

	// Ranked is true when the genre stage ran and Movies is ordered by score
	Ranked bool
}

// Apply runs the query pipeline over movies. The genre stage only runs when
// the earlier stages left at least one movie.
func (m *Manager) Apply(ctx context.Context, movies []movie.Movie, q Query) (Result, error) {
	if q.Filter != nil {
		var err error
		movies, err = m.evaluator.Evaluate(ctx, q.Filter, movies)
		if err != nil {
			return Result{}, err
		}
	}

	if q.Duration != 0 {
		movies = FilterByDuration(movies, float64(q.Duration))
	}

	if len(movies) == 0 || q.Genres == "" {
		return Result{Movies: movies}, nil
	}

	return Result{
		Movies: FilterByGenres(movies, q.Genres, m.genreOpts...),
		Ranked: true,
	}, nil
}
