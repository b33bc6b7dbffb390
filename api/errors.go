package api

import (
	"fmt"
	"net/http"
)

// Messages for outcomes that are not tied to a single handler
const (
	MsgNoMovieFound     = "No movie found for provided parameters."
	MsgNotFound         = "the requested resource could not be found"
	MsgServerError      = "the server encountered a problem and could not process your request"
	MsgRateLimited      = "rate limit exceeded"
	MsgBodyTooLarge     = "request body is too large"
	msgMethodNotAllowed = "the %s method is not supported for this resource"
)

func (s *Server) logError(r *http.Request, err error) {
	s.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := s.writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		s.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, MsgServerError)
}

// dependencyErrorResponse reports a storage failure with its fixed message
func (s *Server) dependencyErrorResponse(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (s *Server) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	s.errorResponse(w, r, http.StatusBadRequest, message)
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, MsgNotFound)
}

func (s *Server) noMovieFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, MsgNoMovieFound)
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(msgMethodNotAllowed, r.Method))
}

func (s *Server) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusTooManyRequests, MsgRateLimited)
}
