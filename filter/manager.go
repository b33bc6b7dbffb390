package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviepicker/movie"
)

// Manager owns the expression compiler, the evaluator and the named
// filter presets, and runs the movie query pipeline
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	genreOpts []GenreOption
	presets   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// WithGenreOptions sets the options used to parse genre specifications
func WithGenreOptions(opts ...GenreOption) ManagerOption {
	return func(m *Manager) {
		m.genreOpts = append(m.genreOpts, opts...)
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		presets: make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.compiler == nil {
		m.compiler = NewExprCompiler(WithCache(100))
	}
	if m.evaluator == nil {
		m.evaluator = NewConcurrentEvaluator()
	}

	return m
}

// Compile compiles an ad-hoc expression
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// RegisterPreset registers a new preset or replaces an existing one
func (m *Manager) RegisterPreset(name, expression string) error {
	f, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile preset '%s': %w", name, err)
	}

	m.mu.Lock()
	m.presets[name] = f
	m.mu.Unlock()

	return nil
}

// RegisterPresets registers several presets. Nothing is registered if any
// of them fails to compile.
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))
	for name, expression := range presets {
		f, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = f
	}

	m.mu.Lock()
	maps.Copy(m.presets, compiled)
	m.mu.Unlock()

	return nil
}

// ReloadPresets replaces the registered presets with presets and empties
// the compiler cache. If any expression fails to compile the current presets
// stay registered.
func (m *Manager) ReloadPresets(presets map[string]string) error {
	if caching, ok := m.compiler.(CachingCompiler); ok {
		caching.Clear()
	}

	if err := m.RegisterPresets(presets); err != nil {
		return err
	}

	for _, name := range m.Presets() {
		if _, ok := presets[name]; !ok {
			m.UnregisterPreset(name)
		}
	}
	return nil
}

// UnregisterPreset removes a preset
func (m *Manager) UnregisterPreset(name string) {
	m.mu.Lock()
	delete(m.presets, name)
	m.mu.Unlock()
}

// Preset returns a registered preset
func (m *Manager) Preset(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	f, ok := m.presets[name]
	m.mu.RUnlock()
	return f, ok
}

// Presets returns the registered preset names in sorted order
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Resolve returns the filter selected by an ad-hoc expression or a preset
// name. A nil filter means neither was given. Giving both is an error.
func (m *Manager) Resolve(expression, preset string) (CompiledFilter, error) {
	switch {
	case expression != "" && preset != "":
		return nil, fmt.Errorf("use either a filter expression or a preset, not both")
	case expression != "":
		return m.compiler.Compile(expression)
	case preset != "":
		f, ok := m.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, preset)
		}
		return f, nil
	}
	return nil, nil
}

// EvaluatePreset evaluates a single registered preset
func (m *Manager) EvaluatePreset(ctx context.Context, name string, movies []movie.Movie) ([]movie.Movie, error) {
	f, ok := m.Preset(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return m.evaluator.Evaluate(ctx, f, movies)
}

// EvaluateAll evaluates every registered preset concurrently
func (m *Manager) EvaluateAll(ctx context.Context, movies []movie.Movie) (map[string][]movie.Movie, error) {
	m.mu.RLock()
	presets := maps.Clone(m.presets)
	m.mu.RUnlock()

	var mu sync.Mutex
	results := make(map[string][]movie.Movie, len(presets))

	g, ctx := errgroup.WithContext(ctx)
	for name, f := range presets {
		g.Go(func() error {
			matches, err := m.evaluator.Evaluate(ctx, f, movies)
			if err != nil {
				return fmt.Errorf("preset '%s': %w", name, err)
			}

			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close stops the evaluator
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}
