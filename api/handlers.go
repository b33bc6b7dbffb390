package api

import (
	"errors"
	"net/http"

	"github.com/s0up4200/moviepicker/filter"
	"github.com/s0up4200/moviepicker/movie"
	"github.com/s0up4200/moviepicker/store"
	"github.com/s0up4200/moviepicker/validator"
)

func (s *Server) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, envelope{"status": "OK"}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

// listMoviesHandler answers GET /movies. With a genres query the ranked
// matches are returned, otherwise one random movie from the survivors of the
// expression and duration stages.
func (s *Server) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	f, err := s.filters.Resolve(qs.Get("filter"), qs.Get("preset"))
	if err != nil {
		s.badRequestResponse(w, r, err.Error())
		return
	}

	movies, err := s.store.ReadMovies(r.Context())
	if err != nil {
		s.dependencyErrorResponse(w, r, store.MsgReadFailed, err)
		return
	}

	q := filter.Query{Genres: qs.Get("genres")}
	if f != nil {
		q.Filter = f
	}
	if duration, ok := filter.ParseDuration(qs.Get("duration")); ok {
		q.Duration = duration
	}

	result, err := s.filters.Apply(r.Context(), movies, q)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}

	if len(result.Movies) == 0 {
		s.noMovieFoundResponse(w, r)
		return
	}

	var body any = result.Movies
	if !result.Ranked {
		body = result.Movies[s.random.IntN(len(result.Movies))]
	}

	if err := s.writeJSON(w, http.StatusOK, body, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

// createMovieHandler answers POST /movies
func (s *Server) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input any
	if err := s.readJSON(w, r, &input); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			s.errorResponse(w, r, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
			return
		}
		s.badRequestResponse(w, r, validator.MsgMissingMovie)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := validator.ValidateMovie(r.Context(), input, s.store)
	if err != nil {
		var validationErr *validator.ValidationError
		var dependencyErr *validator.DependencyError
		switch {
		case errors.As(err, &validationErr):
			s.badRequestResponse(w, r, validationErr.Message)
		case errors.As(err, &dependencyErr):
			s.dependencyErrorResponse(w, r, dependencyErr.Message, err)
		default:
			s.serverErrorResponse(w, r, err)
		}
		return
	}

	existing, err := s.store.ReadMovies(r.Context())
	if err != nil {
		s.dependencyErrorResponse(w, r, store.MsgReadFailed, err)
		return
	}

	m := result.Movie
	m.ID = movie.NextID(existing)

	stored, err := s.store.AppendMovie(r.Context(), result.Genres, existing, m)
	if err != nil {
		s.dependencyErrorResponse(w, r, store.MsgWriteFailed, err)
		return
	}

	s.logger.Info().Int64("id", stored.ID).Str("title", stored.Title).Msg("movie created")

	if err := s.writeJSON(w, http.StatusCreated, stored, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}
