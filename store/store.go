// Package store persists the movie collection and the genre whitelist.
package store

import (
	"context"
	"errors"

	"github.com/s0up4200/moviepicker/movie"
)

// User-facing messages for storage failures
const (
	MsgReadFailed  = "Unable to read data from the db file."
	MsgWriteFailed = "Unable to write data to the db file."
)

// Sentinel errors returned by providers. Callers match them with errors.Is.
var (
	ErrRead  = errors.New("failed to read db file")
	ErrWrite = errors.New("failed to write db file")
)

// Provider reads and writes the movie collection and genre whitelist
type Provider interface {
	// ReadMovies returns the stored movies in file order
	ReadMovies(ctx context.Context) ([]movie.Movie, error)

	// ReadGenres returns the genre whitelist
	ReadGenres(ctx context.Context) ([]string, error)

	// AppendMovie persists genres unchanged together with existing plus m,
	// replacing the whole store, and returns the stored movie
	AppendMovie(ctx context.Context, genres []string, existing []movie.Movie, m movie.Movie) (movie.Movie, error)
}
