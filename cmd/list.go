package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviepicker/filter"
	"github.com/s0up4200/moviepicker/movie"
)

var (
	listDuration int
	listGenres   string
	listJSON     bool
	listDetails  bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List movies matching the query",
	Long: `List the movies in the db file that survive the expression filter and
the runtime window. With --genres the matches are ranked by genre overlap.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listDuration, "duration", 0, "target runtime in minutes (±10)")
	listCmd.Flags().StringVar(&listGenres, "genres", "", "genre specification, e.g. \"[Drama,Mystery]\"")
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the movies as JSON")
	listCmd.Flags().BoolVar(&listDetails, "details", false, "show director, actors and plot")
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := filters.Resolve(filterExpr, preset)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	ctx := context.Background()
	movies, err := provider.ReadMovies(ctx)
	if err != nil {
		return err
	}

	q := filter.Query{Duration: listDuration, Genres: listGenres}
	if f != nil {
		q.Filter = f
		logger.Info().Str("filter", f.Expression()).Msg("Filtering movies")
	}

	result, err := filters.Apply(ctx, movies, q)
	if err != nil {
		return err
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(result.Movies)
	}

	formatter := movie.NewConsoleFormatter()
	fmt.Print(formatter.FormatMovieList(result.Movies, movie.FormatOptions{
		ShowDetails: listDetails,
		Ranked:      result.Ranked,
	}))
	if len(result.Movies) == 0 {
		fmt.Println()
	}

	return nil
}
