// Package movie defines the movie record stored in the db file.
package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
)

// MaxTextLength is the maximum length of the title and director fields.
const MaxTextLength = 255

// ErrInvalidNumber is returned when a numeric field holds neither a JSON
// number nor a numeric string.
var ErrInvalidNumber = errors.New("invalid number format")

// Movie is a single record of the db file.
//
// A decoded Movie keeps the bytes it was decoded from and marshals back to
// them, so keys it lacks are not invented and keys it does not model are not
// dropped. Movies built in code marshal from their fields.
type Movie struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Year      Number   `json:"year"`
	Runtime   Number   `json:"runtime"` // Runtime in minutes.
	Genres    []string `json:"genres"`
	Director  string   `json:"director"`
	Actors    string   `json:"actors"`
	Plot      string   `json:"plot"`
	PosterURL string   `json:"posterUrl"`

	raw json.RawMessage
}

// movieFields has Movie's fields without its JSON methods
type movieFields Movie

func (m Movie) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	return json.Marshal(movieFields(m))
}

func (m *Movie) UnmarshalJSON(data []byte) error {
	var fields movieFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Movie(fields)
	m.raw = bytes.Clone(data)
	return nil
}

// HasGenre reports whether the movie is tagged with the given genre.
// The comparison is exact.
func (m Movie) HasGenre(genre string) bool {
	return slices.Contains(m.Genres, genre)
}

// NextID returns the id the next appended movie receives: one above the
// highest id in the collection, or 1 for an empty collection.
func NextID(movies []Movie) int64 {
	var highest int64
	for _, m := range movies {
		if m.ID > highest {
			highest = m.ID
		}
	}
	return highest + 1
}

// Number is a numeric field that may be persisted either as a JSON number
// (130) or as a decimal string ("130"). The persisted form is kept so the
// db file round-trips unchanged.
type Number struct {
	value  float64
	text   string // original text when the value was decoded from a string
	quoted bool
}

// NewNumber returns a Number that marshals as a plain JSON number.
func NewNumber(v float64) Number {
	return Number{value: v}
}

// Float64 returns the numeric value.
func (n Number) Float64() float64 {
	return n.value
}

func (n Number) String() string {
	if n.quoted {
		return n.text
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.quoted {
		return []byte(strconv.Quote(n.text)), nil
	}
	return []byte(strconv.FormatFloat(n.value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number, a quoted decimal string or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*n = Number{}
		return nil
	}

	if !strings.HasPrefix(raw, `"`) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ErrInvalidNumber
		}
		*n = Number{value: v}
		return nil
	}

	text, err := strconv.Unquote(raw)
	if err != nil {
		return ErrInvalidNumber
	}

	// An empty string is kept as a zero value so legacy records still load.
	var v float64
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		v, err = strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return ErrInvalidNumber
		}
	}

	*n = Number{value: v, text: text, quoted: true}
	return nil
}
