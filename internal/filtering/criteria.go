package filtering

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Criteria is the active filter input. A NaN MinScore means "no minimum".
type Criteria struct {
	SourceSubstring string
	MinScore        float64
}

// HasMinScore reports whether the score rule is active.
func (c Criteria) HasMinScore() bool {
	return !math.IsNaN(c.MinScore)
}

func (c Criteria) String() string {
	score := "any"
	if c.HasMinScore() {
		score = strconv.FormatFloat(c.MinScore, 'f', -1, 64)
	}

	source := c.SourceSubstring
	if source == "" {
		source = "any"
	}

	return fmt.Sprintf("source=%s min_score=%s", source, score)
}

// ValidationError reports filter input that could not be parsed.
// It is never fatal: the offending rule is dropped instead.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseCriteria builds criteria from raw user input. An empty score means 0.
// An unparseable score yields a NaN MinScore, which lets every job pass the
// score rule, together with a *ValidationError describing the input.
func ParseCriteria(source, minScore string) (Criteria, error) {
	c := Criteria{
		SourceSubstring: strings.TrimSpace(source),
	}

	raw := strings.TrimSpace(minScore)
	if raw == "" {
		return c, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.MinScore = math.NaN()
		return c, &ValidationError{Field: "minimum score", Value: raw, Err: err}
	}

	c.MinScore = value
	return c, nil
}
