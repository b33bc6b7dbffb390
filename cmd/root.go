package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviepicker/config"
	"github.com/s0up4200/moviepicker/filter"
	"github.com/s0up4200/moviepicker/store"
)

var (
	version   = "dev"
	buildTime = "unknown"

	cfgFile  string
	dbPath   string
	cfg      *config.Config
	logger   zerolog.Logger
	provider *store.JSONFile
	filters  *filter.Manager

	// Command flags
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviepicker",
	Short: "Pick a movie to watch from a JSON movie collection",
	Long: `moviepicker serves a movie collection stored in a JSON db file over HTTP.
Movies can be narrowed by runtime, ranked by genre overlap or filtered with
expressions, and new movies are validated against the genre whitelist before
they are appended.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// SetVersion sets the build information reported by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the db file (overrides store.path)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp initializes the configuration, the store and the filter engine
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("db") {
		cfg.Store.Path = dbPath
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	provider = store.NewJSONFile(cfg.Store.Path, logger)

	filters, err = newFilterManager(cfg.Filter, logger)
	if err != nil {
		return fmt.Errorf("failed to create filter engine: %w", err)
	}

	logger.Debug().
		Str("db", cfg.Store.Path).
		Strs("presets", filters.Presets()).
		Msg("Application initialized")

	return nil
}

// shutdownApp stops the filter worker pool
func shutdownApp(cmd *cobra.Command, args []string) error {
	if filters == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := filters.Close(ctx); err != nil {
		return fmt.Errorf("failed to stop filter engine: %w", err)
	}
	return nil
}

// exprFunctions are available to every filter expression and preset
var exprFunctions = map[string]any{
	"currentYear": func() int {
		return time.Now().Year()
	},
}

func newFilterManager(cfg config.FilterConfig, logger zerolog.Logger) (*filter.Manager, error) {
	var genreOpts []filter.GenreOption
	if cfg.TrimGenreTokens {
		genreOpts = append(genreOpts, filter.WithTokenTrimming())
	}

	m := filter.NewManager(
		filter.WithCompiler(filter.NewExprCompiler(
			filter.WithCache(cfg.CacheSize),
			filter.WithCustomFunctions(exprFunctions),
		)),
		filter.WithEvaluator(filter.NewConcurrentEvaluator(
			filter.WithWorkers(cfg.Workers),
			filter.WithBatchSize(cfg.BatchSize),
			filter.WithLogger(logger),
		)),
		filter.WithGenreOptions(genreOpts...),
	)

	if err := m.RegisterPresets(cfg.Presets); err != nil {
		_ = m.Close(context.Background())
		return nil, err
	}

	return m, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colour only on a terminal
	fd := os.Stderr.Fd()
	terminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
