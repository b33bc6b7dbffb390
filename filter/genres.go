package filter

import (
	"strings"

	"github.com/s0up4200/moviepicker/movie"
)

// GenreOption configures how a genre specification is parsed
type GenreOption func(*genreOptions)

type genreOptions struct {
	trimTokens bool
}

// WithTokenTrimming trims whitespace around every genre token, so
// "[Drama, Mystery]" yields "Drama" and "Mystery" instead of "Drama" and
// " Mystery".
func WithTokenTrimming() GenreOption {
	return func(o *genreOptions) {
		o.trimTokens = true
	}
}

// ParseGenreSpec splits a genre specification such as "Drama,Mystery" or
// "[Drama, Mystery]" into tokens. The spec is trimmed and a single pair of
// surrounding brackets is removed. Tokens keep their inner whitespace unless
// WithTokenTrimming is given.
func ParseGenreSpec(spec string, opts ...GenreOption) []string {
	var o genreOptions
	for _, opt := range opts {
		opt(&o)
	}

	spec = strings.TrimSpace(spec)
	if len(spec) >= 2 && spec[0] == '[' && spec[len(spec)-1] == ']' {
		spec = spec[1 : len(spec)-1]
	}

	tokens := strings.Split(spec, ",")
	if o.trimTokens {
		for i, token := range tokens {
			tokens[i] = strings.TrimSpace(token)
		}
	}
	return tokens
}

// FilterByGenres ranks movies by how many of the requested genres they carry.
// Movies sharing no genre with the spec are dropped. The result is ordered by
// score, highest first; movies with equal scores keep their input order.
func FilterByGenres(movies []movie.Movie, spec string, opts ...GenreOption) []movie.Movie {
	wanted := make(map[string]struct{})
	for _, token := range ParseGenreSpec(spec, opts...) {
		wanted[token] = struct{}{}
	}

	scores := make([]int, len(movies))
	maxScore := 0
	for i, m := range movies {
		scores[i] = overlapScore(wanted, m.Genres)
		maxScore = max(maxScore, scores[i])
	}

	ranked := make([]movie.Movie, 0, len(movies))
	for score := maxScore; score > 0; score-- {
		for i, m := range movies {
			if scores[i] == score {
				ranked = append(ranked, m)
			}
		}
	}
	return ranked
}

// overlapScore counts the distinct genres that appear in wanted
func overlapScore(wanted map[string]struct{}, genres []string) int {
	seen := make(map[string]struct{}, len(genres))
	score := 0
	for _, genre := range genres {
		if _, dup := seen[genre]; dup {
			continue
		}
		seen[genre] = struct{}{}
		if _, ok := wanted[genre]; ok {
			score++
		}
	}
	return score
}
