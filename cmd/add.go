package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviepicker/movie"
	"github.com/s0up4200/moviepicker/validator"
)

var addFile string

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Validate a movie and append it to the db file",
	Long: `Read a movie as JSON from --file (or stdin), validate it against the
genre whitelist and append it with the next free id.`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addFile, "file", "", "JSON file with the movie (default is stdin)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if addFile != "" && addFile != "-" {
		f, err := os.Open(addFile)
		if err != nil {
			return fmt.Errorf("failed to open movie file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var input any
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return fmt.Errorf("%s: %w", validator.MsgMissingMovie, err)
	}

	ctx := context.Background()
	result, err := validator.ValidateMovie(ctx, input, provider)
	if err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("invalid movie: %s", validationErr.Message)
		}
		return err
	}

	existing, err := provider.ReadMovies(ctx)
	if err != nil {
		return err
	}

	m := result.Movie
	m.ID = movie.NextID(existing)

	stored, err := provider.AppendMovie(ctx, result.Genres, existing, m)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added movie %d: %s\n", stored.ID, stored.Title)
	return nil
}
