package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Show configured filter presets and how many movies each matches",
	RunE:  runPresets,
}

func runPresets(cmd *cobra.Command, args []string) error {
	names := filters.Presets()
	if len(names) == 0 {
		fmt.Println("No presets configured.")
		return nil
	}

	ctx := context.Background()
	movies, err := provider.ReadMovies(ctx)
	if err != nil {
		return err
	}

	matches, err := filters.EvaluateAll(ctx, movies)
	if err != nil {
		return fmt.Errorf("failed to evaluate presets: %w", err)
	}

	fmt.Printf("\nPresets (%d):\n\n", len(names))
	for i, name := range names {
		prefix := "├"
		if i == len(names)-1 {
			prefix = "╰"
		}

		expression := ""
		if f, ok := filters.Preset(name); ok {
			expression = f.Expression()
		}
		fmt.Printf("%s── %s: %d/%d movies\n", prefix, name, len(matches[name]), len(movies))
		if i == len(names)-1 {
			fmt.Printf("    %s\n", expression)
		} else {
			fmt.Printf("│   %s\n", expression)
		}
	}

	return nil
}
