// Package validator checks movie submissions before they are stored.
package validator

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/s0up4200/moviepicker/movie"
	"github.com/s0up4200/moviepicker/store"
)

// Messages returned to clients, one per rule
const (
	MsgMissingMovie     = "Request body should contain movie."
	MsgGenresNotArray   = "Request body should contain 'genres' that is type of array."
	MsgGenresNotAllowed = "Only predefined 'genres' from db file are valid."
	MsgGenresDuplicated = "'genres' should not contain duplicates."
	MsgInvalidTitle     = "Request body should contain 'title' that is type of string with max 255 characters."
	MsgInvalidYear      = "Request body should contain 'year' that is type of number."
	MsgInvalidRuntime   = "Request body should contain 'runtime' that is type of number."
	MsgInvalidDirector  = "Request body should contain 'director' that is type of string with max 255 characters."
	MsgInvalidActors    = "Request body may contain 'actors' that should be type of string."
	MsgInvalidPlot      = "Request body may contain 'plot' that should be type of string."
	MsgInvalidPosterURL = "Request body may contain 'posterUrl' that should be type of string."
)

// GenreProvider supplies the genre whitelist
type GenreProvider interface {
	ReadGenres(ctx context.Context) ([]string, error)
}

// Result is a validated submission. Genres is the whitelist read during
// validation and is handed to the append stage so storage is not read twice.
type Result struct {
	Movie  movie.Movie
	Genres []string
}

// ValidateMovie checks a decoded JSON submission. Rules run in a fixed
// order and the first failure is returned as a *ValidationError. A whitelist
// read failure is returned as a *DependencyError.
//
// Required numbers and strings use truthiness: 0 and "" count as missing.
// Optional strings accept any falsy value (null, false, 0, "") as absent.
func ValidateMovie(ctx context.Context, candidate any, genres GenreProvider) (Result, error) {
	body, ok := candidate.(map[string]any)
	if !ok || len(body) == 0 {
		return Result{}, invalid("", MsgMissingMovie)
	}

	submitted, ok := body["genres"].([]any)
	if !ok || len(submitted) == 0 {
		return Result{}, invalid("genres", MsgGenresNotArray)
	}

	allowed, err := genres.ReadGenres(ctx)
	if err != nil {
		return Result{}, &DependencyError{Message: store.MsgReadFailed, Err: err}
	}

	movieGenres, ok := fromWhitelist(submitted, allowed)
	if !ok {
		return Result{}, invalid("genres", MsgGenresNotAllowed)
	}
	if !unique(movieGenres) {
		return Result{}, invalid("genres", MsgGenresDuplicated)
	}

	title, ok := requiredString(body["title"])
	if !ok {
		return Result{}, invalid("title", MsgInvalidTitle)
	}

	year, ok := requiredNumber(body["year"])
	if !ok {
		return Result{}, invalid("year", MsgInvalidYear)
	}

	runtime, ok := requiredNumber(body["runtime"])
	if !ok {
		return Result{}, invalid("runtime", MsgInvalidRuntime)
	}

	director, ok := requiredString(body["director"])
	if !ok {
		return Result{}, invalid("director", MsgInvalidDirector)
	}

	actors, ok := optionalString(body["actors"])
	if !ok {
		return Result{}, invalid("actors", MsgInvalidActors)
	}

	plot, ok := optionalString(body["plot"])
	if !ok {
		return Result{}, invalid("plot", MsgInvalidPlot)
	}

	posterURL, ok := optionalString(body["posterUrl"])
	if !ok {
		return Result{}, invalid("posterUrl", MsgInvalidPosterURL)
	}

	return Result{
		Movie: movie.Movie{
			Title:     title,
			Year:      movie.NewNumber(year),
			Runtime:   movie.NewNumber(runtime),
			Genres:    movieGenres,
			Director:  director,
			Actors:    actors,
			Plot:      plot,
			PosterURL: posterURL,
		},
		Genres: allowed,
	}, nil
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// fromWhitelist converts the submitted genres, failing on any value that is
// not a whitelisted string
func fromWhitelist(submitted []any, allowed []string) ([]string, bool) {
	set := make(map[string]struct{}, len(allowed))
	for _, genre := range allowed {
		set[genre] = struct{}{}
	}

	out := make([]string, 0, len(submitted))
	for _, v := range submitted {
		genre, ok := v.(string)
		if !ok {
			return nil, false
		}
		if _, ok := set[genre]; !ok {
			return nil, false
		}
		out = append(out, genre)
	}
	return out, true
}

func unique(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

func requiredString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" || utf8.RuneCountInString(s) > movie.MaxTextLength {
		return "", false
	}
	return s, true
}

func requiredNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	if !ok || n == 0 || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func optionalString(v any) (string, bool) {
	if !truthy(v) {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// truthy reports whether v counts as present; null, false, 0 and "" do not
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
