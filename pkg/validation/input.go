package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// ErrInvalidInput is the sentinel matched by every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why a single field was rejected.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %s, got %q", e.Field, e.Reason, e.Value)
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ParseAmount parses free-form numeric text such as "250,000", "$1,200.50"
// or "4.5%". Surrounding whitespace, a leading currency sign, thousands
// separators and a trailing percent sign are ignored.
func ParseAmount(field, text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, &InputError{Field: field, Reason: "is required"}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &InputError{Field: field, Value: text, Reason: "must be a number"}
	}
	return value, nil
}

// ParsePositive parses text with ParseAmount and requires a positive result.
func ParsePositive(field, text string) (float64, error) {
	value, err := ParseAmount(field, text)
	if err != nil {
		return 0, err
	}
	if err := RequirePositive(field, value); err != nil {
		return 0, err
	}
	return value, nil
}

// RequirePositive rejects zero, negative, NaN and infinite values.
func RequirePositive(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &InputError{Field: field, Value: strconv.FormatFloat(value, 'f', -1, 64), Reason: "must be a finite number"}
	}
	if value <= 0 {
		return &InputError{Field: field, Value: strconv.FormatFloat(value, 'f', -1, 64), Reason: "must be a positive number"}
	}
	return nil
}

// ValidateLoan checks the three loan fields in form order and returns the
// first failure.
func ValidateLoan(principal, annualRate, years float64) error {
	if err := RequirePositive("amount", principal); err != nil {
		return err
	}
	if err := RequirePositive("rate", annualRate); err != nil {
		return err
	}
	if err := RequirePositive("years", years); err != nil {
		return err
	}
	if years > constants.MaxTermYears {
		return &InputError{Field: "years", Value: strconv.FormatFloat(years, 'f', -1, 64), Reason: fmt.Sprintf("must be at most %d years", constants.MaxTermYears)}
	}
	return nil
}
