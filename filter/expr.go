package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/moviepicker/movie"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression  string
	program     *vm.Program
	environment func(movie.Movie) map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables caching of compiled filters
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds helper functions to the expression environment
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extraFuncs, funcs)
	}
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	extraFuncs map[string]any
	cache      *lruCache[CompiledFilter]
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		extraFuncs: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CompileFilter compiles an expression without caching
func CompileFilter(expression string) (CompiledFilter, error) {
	return NewExprCompiler().Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against the environment of a blank movie so unknown
	// fields and helper misuse fail here rather than per movie
	program, err := expr.Compile(expression,
		expr.Env(c.environment(movie.Movie{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression:  expression,
		program:     program,
		environment: c.environment,
	}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (c *exprCompiler) environment(m movie.Movie) map[string]any {
	env := newEnvironment(m)
	maps.Copy(env, c.extraFuncs)
	return env
}

// Evaluate evaluates the filter against a movie. Movies the program fails
// on do not match.
func (f *exprFilter) Evaluate(m movie.Movie) bool {
	matched, err := f.Match(m)
	return err == nil && matched
}

// Match evaluates the filter and reports run-time failures
func (f *exprFilter) Match(m movie.Movie) (bool, error) {
	result, err := expr.Run(f.program, f.environment(m))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, MovieID: m.ID, Err: err}
	}

	// AsBool() at compile time guarantees the type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// newEnvironment exposes a movie and its helper functions to expressions
func newEnvironment(m movie.Movie) map[string]any {
	env := make(map[string]any, 16)

	// Movie fields
	env["Movie"] = m
	env["ID"] = m.ID
	env["Title"] = m.Title
	env["Year"] = m.Year.Float64()
	env["Runtime"] = m.Runtime.Float64()
	env["Genres"] = m.Genres
	env["Director"] = m.Director
	env["Actors"] = m.Actors
	env["Plot"] = m.Plot
	env["PosterURL"] = m.PosterURL

	// Genre helpers compare case-insensitively
	lowerGenres := make([]string, len(m.Genres))
	for i, genre := range m.Genres {
		lowerGenres[i] = strings.ToLower(genre)
	}
	hasGenre := func(genre string) bool {
		return slices.Contains(lowerGenres, strings.ToLower(genre))
	}
	env["hasGenre"] = hasGenre
	env["hasAnyGenre"] = func(genres ...string) bool {
		return slices.ContainsFunc(genres, hasGenre)
	}
	env["hasAllGenres"] = func(genres ...string) bool {
		for _, genre := range genres {
			if !hasGenre(genre) {
				return false
			}
		}
		return true
	}

	runtime := m.Runtime.Float64()
	env["runtimeBetween"] = func(lower, upper int) bool {
		return runtime >= float64(lower) && runtime <= float64(upper)
	}

	return env
}
