// Package api serves the movie collection over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviepicker/config"
	"github.com/s0up4200/moviepicker/filter"
	"github.com/s0up4200/moviepicker/store"
)

// Random picks the movie returned when no genre ranking is requested
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// Option configures a Server
type Option func(*Server)

// WithServerConfig sets the listen port, timeouts and body limit
func WithServerConfig(cfg config.ServerConfig) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithRateLimit enables the global request limiter
func WithRateLimit(cfg config.LimiterConfig) Option {
	return func(s *Server) {
		s.limiter = cfg
	}
}

// WithRandom replaces the source used for random picks
func WithRandom(r Random) Option {
	return func(s *Server) {
		if r != nil {
			s.random = r
		}
	}
}

// Server handles the movie endpoints
type Server struct {
	store   store.Provider
	filters *filter.Manager
	logger  zerolog.Logger
	random  Random
	cfg     config.ServerConfig
	limiter config.LimiterConfig

	// writeMu serializes the read-validate-append sequence of POST /movies
	writeMu sync.Mutex
}

// New creates a server backed by provider
func New(provider store.Provider, filters *filter.Manager, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		store:   provider,
		filters: filters,
		logger:  logger.With().Str("component", "api").Logger(),
		random:  globalRandom{},
		cfg: config.ServerConfig{
			Port:            3000,
			Env:             "development",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: 20 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ErrorLog:     log.New(s.logger, "", 0),
		IdleTimeout:  s.cfg.IdleTimeout,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().
			Str("addr", srv.Addr).
			Str("env", s.cfg.Env).
			Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info().Str("addr", srv.Addr).Msg("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		s.logger.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}
