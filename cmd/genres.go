package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviepicker/movie"
)

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "Print the genre whitelist",
	RunE:  runGenres,
}

func runGenres(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	genres, err := provider.ReadGenres(ctx)
	if err != nil {
		return err
	}

	movies, err := provider.ReadMovies(ctx)
	if err != nil {
		return err
	}

	fmt.Println(movie.NewConsoleFormatter().FormatGenres(genres, movies))
	return nil
}
