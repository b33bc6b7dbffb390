package movie

import (
	"fmt"
	"strings"
)

// FormatOptions controls what FormatMovieList prints
type FormatOptions struct {
	ShowDetails bool // director, actors and plot
	Ranked      bool // prefix each entry with its rank
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatMovieList formats a list of movies for console display
func (f *ConsoleFormatter) FormatMovieList(movies []Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No movie found for provided parameters."
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, m := range movies {
		isLast := i == len(movies)-1
		rank := 0
		if options.Ranked {
			rank = i + 1
		}
		f.formatMovie(&sb, m, isLast, rank, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatGenres formats the genre whitelist with the number of movies per genre
func (f *ConsoleFormatter) FormatGenres(genres []string, movies []Movie) string {
	counts := make(map[string]int, len(genres))
	for _, genre := range genres {
		for _, m := range movies {
			if m.HasGenre(genre) {
				counts[genre]++
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nGenres (%d):\n\n", len(genres))

	for i, genre := range genres {
		prefix := "├"
		if i == len(genres)-1 {
			prefix = "╰"
		}
		fmt.Fprintf(&sb, "%s── %s (%d)\n", prefix, genre, counts[genre])
	}

	return sb.String()
}

// formatMovie formats a single movie entry. rank 0 means unranked.
func (f *ConsoleFormatter) formatMovie(sb *strings.Builder, m Movie, isLast bool, rank int, options FormatOptions) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	title := fmt.Sprintf("%s (%s)", m.Title, m.Year)
	if rank > 0 {
		title = fmt.Sprintf("#%d %s", rank, title)
	}
	fmt.Fprintf(sb, "%s── %s\n", prefix, title)

	indent := "│   "
	if isLast {
		indent = "    "
	}

	// Basic info
	info := fmt.Sprintf("%s min", m.Runtime)
	if len(m.Genres) > 0 {
		info += " | " + strings.Join(m.Genres, ", ")
	}
	fmt.Fprintf(sb, "%s%s\n", indent, info)

	if !options.ShowDetails {
		return
	}

	if m.Director != "" {
		fmt.Fprintf(sb, "%sDirector: %s\n", indent, m.Director)
	}
	if m.Actors != "" {
		fmt.Fprintf(sb, "%sActors: %s\n", indent, m.Actors)
	}
	if m.Plot != "" {
		fmt.Fprintf(sb, "%sPlot: %s\n", indent, m.Plot)
	}
}
