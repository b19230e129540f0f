package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ai-teacher/internal/chart"
	"ai-teacher/internal/domain"
)

// MaxDimension bounds chart canvas sizes accepted from clients.
const MaxDimension = 4096

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ParseQuestionID validates a question id path segment.
func (v *Validator) ParseQuestionID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError("question id is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid question id: %q", raw)).
			WithContext("field", "questionId")
	}
	return id, nil
}

// ParseDimension validates an optional canvas dimension. Empty or 0 selects the
// chart renderer's default; anything else must leave room for the plot padding.
func (v *Validator) ParseDimension(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be a number", field)).
			WithContext("field", field)
	}
	if n == 0 {
		return 0, nil
	}
	if n <= chart.MinDimension || n > MaxDimension {
		return 0, domain.NewValidationError(
			fmt.Sprintf("%s must be greater than %g and at most %d", field, chart.MinDimension, MaxDimension)).
			WithContext("field", field).
			WithContext("value", n)
	}
	return n, nil
}
