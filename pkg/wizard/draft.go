package wizard

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultRating is the slider position of a fresh draft.
const DefaultRating = 0.33

// ValidationError reports an invalid answer for one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Draft holds the answers collected so far. WasAppropriate is "" until the
// first step is answered, then "true" or "false".
type Draft struct {
	Text           string
	WasAppropriate string
	Rating         float64
}

// NewDraft returns an unanswered draft.
func NewDraft() Draft {
	return Draft{Rating: DefaultRating}
}

func validateAppropriate(v string) error {
	if v != "true" && v != "false" {
		return &ValidationError{Field: "wasAppropriate", Message: "answer yes or no"}
	}
	return nil
}

func validateRating(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return &ValidationError{Field: "rating", Message: "must be between 0 and 1"}
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text", Message: "cannot be empty"}
	}
	return nil
}

// Validate checks every answer and joins all failures.
func (d Draft) Validate() error {
	return errors.Join(
		validateAppropriate(d.WasAppropriate),
		validateRating(d.Rating),
		validateText(d.Text),
	)
}

// merge validates the answers step owns in answer and copies them into d.
func (d *Draft) merge(step Step, answer Draft) error {
	switch step {
	case StepAppropriate:
		if err := validateAppropriate(answer.WasAppropriate); err != nil {
			return err
		}
		d.WasAppropriate = answer.WasAppropriate
	case StepRating:
		if err := validateRating(answer.Rating); err != nil {
			return err
		}
		d.Rating = answer.Rating
	case StepReference:
		if err := validateText(answer.Text); err != nil {
			return err
		}
		d.Text = answer.Text
	default:
		return fmt.Errorf("%w: %q has no answers", ErrInvalidStep, step)
	}
	return nil
}
