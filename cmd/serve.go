package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviepicker/api"
	"github.com/s0up4200/moviepicker/config"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve GET /movies and POST /movies until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "P", 0, "port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		if servePort < 1 || servePort > 65535 {
			return fmt.Errorf("invalid port: %d", servePort)
		}
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGHUP reloads filter presets from the config file
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := reloadPresets(); err != nil {
					logger.Error().Err(err).Msg("Failed to reload presets")
				}
			}
		}
	}()

	srv := api.New(provider, filters, logger,
		api.WithServerConfig(cfg.Server),
		api.WithRateLimit(cfg.Limiter),
	)

	return srv.Serve(ctx)
}

// reloadPresets re-reads the config file and swaps in its filter presets.
// Other settings only change on restart.
func reloadPresets() error {
	reloaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := filters.ReloadPresets(reloaded.Filter.Presets); err != nil {
		return err
	}

	cfg.Filter.Presets = reloaded.Filter.Presets
	logger.Info().Strs("presets", filters.Presets()).Msg("Reloaded presets")
	return nil
}
