package filter

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/s0up4200/moviepicker/movie"
)

// fixtureMovies mirrors the three-movie db used throughout the tests
func fixtureMovies() []movie.Movie {
	return []movie.Movie{
		{ID: 1, Title: "Movie One", Runtime: movie.NewNumber(140), Genres: []string{"Drama", "Mystery"}},
		{ID: 2, Title: "Movie Two", Runtime: movie.NewNumber(120), Genres: []string{"Drama", "Comedy"}},
		{ID: 3, Title: "Movie Three", Runtime: movie.NewNumber(109), Genres: []string{"Biography", "Comedy"}},
	}
}

func ids(movies []movie.Movie) []int64 {
	out := make([]int64, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func TestFilterByDuration(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		want   []int64
	}{
		{name: "fixture window", target: 120, want: []int64{2}},
		{name: "upper bound inclusive", target: 130, want: []int64{1, 2}},
		{name: "lower bound inclusive", target: 99, want: []int64{3}},
		{name: "wide match keeps order", target: 115, want: []int64{2, 3}},
		{name: "no match", target: 10, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterByDuration(fixtureMovies(), tt.target))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterByDuration(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestFilterByDurationWindowProperty(t *testing.T) {
	var movies []movie.Movie
	for runtime := 80; runtime <= 160; runtime++ {
		movies = append(movies, movie.Movie{ID: int64(runtime), Runtime: movie.NewNumber(float64(runtime))})
	}

	for target := 90; target <= 150; target += 7 {
		got := FilterByDuration(movies, float64(target))
		for _, m := range movies {
			inWindow := m.Runtime.Float64() >= float64(target-10) && m.Runtime.Float64() <= float64(target+10)
			included := slices.ContainsFunc(got, func(g movie.Movie) bool { return g.ID == m.ID })
			if inWindow != included {
				t.Fatalf("target %d runtime %v: included=%v, want %v", target, m.Runtime.Float64(), included, inWindow)
			}
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"120", 120, true},
		{"  95", 95, true},
		{"120min", 120, true},
		{"12.7", 12, true},
		{"-5", -5, true},
		{"+30", 30, true},
		{"0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"0x78", 120, true},
		{"0X78min", 120, true},
		{"-0x10", -16, true},
		{"0x", 0, false},
		{"0xg", 0, false},
		{"0x0", 0, false},
		{"0120", 120, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDuration(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseDuration(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseGenreSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		opts []GenreOption
		want []string
	}{
		{name: "plain list", spec: "Drama,Mystery", want: []string{"Drama", "Mystery"}},
		{name: "bracketed list keeps inner spaces", spec: "[Drama, Mystery]", want: []string{"Drama", " Mystery"}},
		{name: "outer whitespace trimmed", spec: "  [Crime]  ", want: []string{"Crime"}},
		{name: "only one bracket pair removed", spec: "[[Drama]]", want: []string{"[Drama]"}},
		{name: "unbalanced bracket kept", spec: "[Drama", want: []string{"[Drama"}},
		{name: "empty brackets", spec: "[]", want: []string{""}},
		{name: "token trimming", spec: "[Drama, Mystery ]", opts: []GenreOption{WithTokenTrimming()}, want: []string{"Drama", "Mystery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGenreSpec(tt.spec, tt.opts...)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseGenreSpec(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestFilterByGenres(t *testing.T) {
	tests := []struct {
		name string
		spec string
		opts []GenreOption
		want []int64
	}{
		{name: "ranked by overlap", spec: "Drama,Mystery", want: []int64{1, 2}},
		{name: "bracketed without trimming", spec: "[Drama, Mystery]", want: []int64{1, 2}},
		{name: "bracketed with trimming", spec: "[Drama, Mystery]", opts: []GenreOption{WithTokenTrimming()}, want: []int64{1, 2}},
		{name: "ties keep input order", spec: "Comedy", want: []int64{2, 3}},
		{name: "higher score first", spec: "Biography,Comedy", want: []int64{3, 2}},
		{name: "no overlap", spec: "[Crime]", want: []int64{}},
		{name: "blank spec", spec: "   ", want: []int64{}},
		{name: "duplicate tokens do not count", spec: "Crime,Crime", want: []int64{}},
		{name: "case sensitive", spec: "drama", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterByGenres(fixtureMovies(), tt.spec, tt.opts...))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterByGenres(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestFilterByGenresNeverReturnsZeroOverlap(t *testing.T) {
	specs := []string{"Drama", "Comedy,Drama", "[Sci-Fi, War]", "Mystery,Mystery", ",", "Biography"}
	for _, spec := range specs {
		tokens := ParseGenreSpec(spec)
		for _, m := range FilterByGenres(fixtureMovies(), spec) {
			if !slices.ContainsFunc(tokens, m.HasGenre) {
				t.Errorf("spec %q returned movie %d without a shared genre", spec, m.ID)
			}
		}
	}
}

func TestOverlapScoreTrimmingDifference(t *testing.T) {
	m := fixtureMovies()[0]

	score := func(opts ...GenreOption) int {
		wanted := make(map[string]struct{})
		for _, token := range ParseGenreSpec("[Drama, Mystery]", opts...) {
			wanted[token] = struct{}{}
		}
		return overlapScore(wanted, m.Genres)
	}

	if got := score(); got != 1 {
		t.Errorf("untrimmed score = %d, want 1", got)
	}
	if got := score(WithTokenTrimming()); got != 2 {
		t.Errorf("trimmed score = %d, want 2", got)
	}
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{name: "valid expression", expression: `hasGenre("Drama")`},
		{name: "empty expression", expression: "  ", wantErr: true, errContains: "empty expression"},
		{name: "invalid syntax", expression: `hasGenre("unclosed`, wantErr: true},
		{name: "unknown field", expression: `Rating > 5`, wantErr: true},
		{name: "non boolean", expression: `Runtime + 1`, wantErr: true},
		{name: "complex expression", expression: `hasAnyGenre("Drama", "Comedy") and Runtime >= 100 and not (lower(Title) contains "three")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				var compErr *CompilationError
				if !errors.As(err, &compErr) {
					t.Errorf("expected CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Expression() != tt.expression {
				t.Errorf("Expression() = %q, want %q", f.Expression(), tt.expression)
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	m := movie.Movie{
		ID:       7,
		Title:    "The Big Short",
		Year:     movie.NewNumber(2015),
		Runtime:  movie.NewNumber(130),
		Genres:   []string{"Biography", "Comedy", "Drama"},
		Director: "Adam McKay",
	}

	tests := []struct {
		expression string
		expected   bool
	}{
		{`hasGenre("drama")`, true},
		{`hasGenre("Horror")`, false},
		{`hasAllGenres("Comedy", "Drama")`, true},
		{`hasAllGenres("Comedy", "War")`, false},
		{`Year > 2010`, true},
		{`runtimeBetween(120, 140)`, true},
		{`runtimeBetween(90, 100)`, false},
		{`lower(Director) startsWith "adam"`, true},
		{`Title contains "Big"`, true},
		{`len(Genres) == 3`, true},
		{`Movie.ID == 7`, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := CompileFilter(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}
			if got := f.Evaluate(m); got != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, got, tt.expression)
			}
		})
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isEpic": func(runtime float64) bool { return runtime >= 135 },
	}))

	f, err := compiler.Compile(`isEpic(Runtime)`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	got := ids(NewConcurrentEvaluator(WithWorkers(1)).evaluateChunk(f, fixtureMovies()))
	if !slices.Equal(got, []int64{1}) {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestConcurrentEvaluationKeepsOrder(t *testing.T) {
	movies := generateTestMovies(2000)

	f, err := CompileFilter(`hasGenre("Drama") and Runtime > 100`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(100))
	defer evaluator.Stop(context.Background())

	matches, err := evaluator.Evaluate(context.Background(), f, movies)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	var expected []int64
	for _, m := range movies {
		if f.Evaluate(m) {
			expected = append(expected, m.ID)
		}
	}

	if !slices.Equal(ids(matches), expected) {
		t.Errorf("concurrent result differs from sequential: got %d matches, want %d", len(matches), len(expected))
	}
}

func TestConcurrentEvaluationCancelled(t *testing.T) {
	f, err := CompileFilter(`Runtime > 0`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	defer evaluator.Stop(context.Background())

	if _, err := evaluator.Evaluate(ctx, f, generateTestMovies(100)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestManagerPresets(t *testing.T) {
	manager := NewManager()
	defer manager.Close(context.Background())
	ctx := context.Background()

	err := manager.RegisterPresets(map[string]string{
		"long":   `Runtime >= 120`,
		"comedy": `hasGenre("Comedy")`,
	})
	if err != nil {
		t.Fatalf("failed to register presets: %v", err)
	}

	if names := manager.Presets(); !slices.Equal(names, []string{"comedy", "long"}) {
		t.Errorf("Presets() = %v", names)
	}

	matches, err := manager.EvaluatePreset(ctx, "long", fixtureMovies())
	if err != nil {
		t.Fatalf("failed to evaluate preset: %v", err)
	}
	if got := ids(matches); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("long preset = %v, want [1 2]", got)
	}

	all, err := manager.EvaluateAll(ctx, fixtureMovies())
	if err != nil {
		t.Fatalf("failed to evaluate all presets: %v", err)
	}
	if got := ids(all["comedy"]); !slices.Equal(got, []int64{2, 3}) {
		t.Errorf("comedy preset = %v, want [2 3]", got)
	}

	manager.UnregisterPreset("long")
	if _, ok := manager.Preset("long"); ok {
		t.Error("expected preset 'long' to be removed")
	}
	if _, err := manager.EvaluatePreset(ctx, "long", fixtureMovies()); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("expected ErrPresetNotFound, got %v", err)
	}

	if err := manager.RegisterPresets(map[string]string{"broken": `Runtime >`}); err == nil {
		t.Error("expected error for invalid preset")
	}
	if _, ok := manager.Preset("broken"); ok {
		t.Error("invalid preset must not be registered")
	}
}

func TestManagerReloadPresets(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10))
	manager := NewManager(WithCompiler(compiler))
	defer manager.Close(context.Background())

	err := manager.RegisterPresets(map[string]string{
		"long":   `Runtime >= 120`,
		"comedy": `hasGenre("Comedy")`,
	})
	if err != nil {
		t.Fatalf("failed to register presets: %v", err)
	}
	if _, err := manager.Compile(`Runtime < 100`); err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	err = manager.ReloadPresets(map[string]string{
		"long":  `Runtime >= 140`,
		"short": `Runtime < 110`,
	})
	if err != nil {
		t.Fatalf("failed to reload presets: %v", err)
	}

	if names := manager.Presets(); !slices.Equal(names, []string{"long", "short"}) {
		t.Errorf("Presets() = %v, want [long short]", names)
	}
	if size := compiler.(CachingCompiler).Size(); size != 2 {
		t.Errorf("cache size = %d, want 2 after reload", size)
	}

	matches, err := manager.EvaluatePreset(context.Background(), "long", fixtureMovies())
	if err != nil {
		t.Fatalf("failed to evaluate preset: %v", err)
	}
	if got := ids(matches); !slices.Equal(got, []int64{1}) {
		t.Errorf("reloaded long preset = %v, want [1]", got)
	}

	if err := manager.ReloadPresets(map[string]string{"broken": `Runtime >`}); err == nil {
		t.Error("expected error for invalid preset")
	}
	if names := manager.Presets(); !slices.Equal(names, []string{"long", "short"}) {
		t.Errorf("failed reload changed presets to %v", names)
	}
}

func TestManagerResolve(t *testing.T) {
	manager := NewManager()
	defer manager.Close(context.Background())

	if err := manager.RegisterPreset("long", `Runtime >= 120`); err != nil {
		t.Fatalf("failed to register preset: %v", err)
	}

	f, err := manager.Resolve("", "")
	if err != nil || f != nil {
		t.Errorf("Resolve with no input = (%v, %v), want (nil, nil)", f, err)
	}
	if f, err := manager.Resolve("", "long"); err != nil || f.Expression() != "Runtime >= 120" {
		t.Errorf("Resolve preset = (%v, %v)", f, err)
	}
	if _, err := manager.Resolve("", "missing"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("expected ErrPresetNotFound, got %v", err)
	}
	if _, err := manager.Resolve("Year > 1", "long"); err == nil {
		t.Error("expected error when both expression and preset are given")
	}
}

func TestManagerApply(t *testing.T) {
	manager := NewManager()
	defer manager.Close(context.Background())
	ctx := context.Background()

	long, err := manager.Compile(`Runtime >= 120`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	tests := []struct {
		name       string
		query      Query
		want       []int64
		wantRanked bool
	}{
		{name: "no stages", query: Query{}, want: []int64{1, 2, 3}},
		{name: "duration only", query: Query{Duration: 120}, want: []int64{2}},
		{name: "genres only", query: Query{Genres: "Drama,Mystery"}, want: []int64{1, 2}, wantRanked: true},
		{name: "duration then genres", query: Query{Duration: 115, Genres: "Comedy"}, want: []int64{2, 3}, wantRanked: true},
		{name: "empty after duration skips genres", query: Query{Duration: 10, Genres: "Drama"}, want: []int64{}},
		{name: "expression first", query: Query{Filter: long, Genres: "Comedy"}, want: []int64{2}, wantRanked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := manager.Apply(ctx, fixtureMovies(), tt.query)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got := ids(result.Movies); !slices.Equal(got, tt.want) {
				t.Errorf("movies = %v, want %v", got, tt.want)
			}
			if result.Ranked != tt.wantRanked {
				t.Errorf("ranked = %v, want %v", result.Ranked, tt.wantRanked)
			}
		})
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`Runtime > 100`)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}
	second, err := compiler.Compile(`Runtime > 100`)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if first != second {
		t.Error("expected cached filter to be returned")
	}

	cachingCompiler, ok := compiler.(CachingCompiler)
	if !ok {
		t.Fatal("expr compiler should implement CachingCompiler")
	}
	if cachingCompiler.Size() != 1 {
		t.Errorf("expected cache size 1 but got %d", cachingCompiler.Size())
	}

	compiler.Compile(`Runtime > 110`)
	compiler.Compile(`Runtime > 120`)
	if cachingCompiler.Size() != 2 {
		t.Errorf("expected cache size capped at 2 but got %d", cachingCompiler.Size())
	}

	cachingCompiler.Clear()
	if cachingCompiler.Size() != 0 {
		t.Errorf("expected cache size 0 after clear but got %d", cachingCompiler.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a") // b becomes least recently used
	cache.Put("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%v, %v), want (1, true)", v, ok)
	}
}

func TestWorkerPoolStopped(t *testing.T) {
	pool := NewWorkerPool(2)

	done := make(chan struct{})
	if err := pool.Submit(context.Background(), func() { close(done) }); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	<-done

	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}
