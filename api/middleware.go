package api

import (
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"golang.org/x/time/rate"
)

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit shares one token bucket between all clients
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if !s.limiter.Enabled {
		return next
	}

	limiter := rate.NewLimiter(rate.Limit(s.limiter.RPS), s.limiter.Burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			s.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", metrics.Code).
			Int64("bytes", metrics.Written).
			Dur("duration", metrics.Duration).
			Msg("request")
	})
}
