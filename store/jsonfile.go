package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/moviepicker/movie"
)

// document is the on-disk layout of the db file. Pointers distinguish a
// missing key from an empty list.
type document struct {
	Genres *[]string      `json:"genres"`
	Movies *[]movie.Movie `json:"movies"`
}

// JSONFile implements Provider on top of a single JSON document
type JSONFile struct {
	path   string
	logger zerolog.Logger
	mu     sync.RWMutex
}

// NewJSONFile returns a provider for the db file at path. The file is not
// touched until the first read.
func NewJSONFile(path string, logger zerolog.Logger) *JSONFile {
	return &JSONFile{
		path:   path,
		logger: logger.With().Str("component", "store").Str("path", path).Logger(),
	}
}

// Path returns the location of the db file
func (s *JSONFile) Path() string {
	return s.path
}

// ReadMovies returns the stored movies
func (s *JSONFile) ReadMovies(ctx context.Context) ([]movie.Movie, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Movies == nil {
		return nil, s.readErr(fmt.Errorf("no movies in the db file"))
	}

	s.logger.Debug().Int("movies", len(*doc.Movies)).Msg("Read movies from db file")
	return *doc.Movies, nil
}

// ReadGenres returns the genre whitelist
func (s *JSONFile) ReadGenres(ctx context.Context) ([]string, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Genres == nil {
		return nil, s.readErr(fmt.Errorf("no genres in the db file"))
	}

	return *doc.Genres, nil
}

// AppendMovie rewrites the db file with m added after existing
func (s *JSONFile) AppendMovie(ctx context.Context, genres []string, existing []movie.Movie, m movie.Movie) (movie.Movie, error) {
	if err := ctx.Err(); err != nil {
		return movie.Movie{}, err
	}

	movies := append(slices.Clip(existing), m)
	doc := document{Genres: &genres, Movies: &movies}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return movie.Movie{}, s.writeErr(fmt.Errorf("encode db file: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		return movie.Movie{}, s.writeErr(err)
	}

	s.logger.Info().Int64("movie_id", m.ID).Str("title", m.Title).Msg("Appended movie to db file")
	return m, nil
}

func (s *JSONFile) load(ctx context.Context) (*document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		return nil, s.readErr(err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, s.readErr(fmt.Errorf("parse db file: %w", err))
	}
	return &doc, nil
}

func (s *JSONFile) readErr(err error) error {
	s.logger.Error().Err(err).Msg("Failed to read db file")
	return fmt.Errorf("%w: %w", ErrRead, err)
}

func (s *JSONFile) writeErr(err error) error {
	s.logger.Error().Err(err).Msg("Failed to write db file")
	return fmt.Errorf("%w: %w", ErrWrite, err)
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so readers never see a partial document
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".db-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace db file: %w", err)
	}
	return nil
}
