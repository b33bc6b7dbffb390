package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Routes returns the handler for all endpoints wrapped in middleware
func (s *Server) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/", s.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/movies", s.listMoviesHandler)
	router.HandlerFunc(http.MethodPost, "/movies", s.createMovieHandler)

	return s.logRequest(s.recoverPanic(s.rateLimit(router)))
}
