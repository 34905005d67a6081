// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateExtraMode checks if the extra payment mode is supported. An empty
// mode is accepted and treated as recurring by callers.
func ValidateExtraMode(mode string) error {
	switch mode {
	case "", constants.ExtraModeRecurring, constants.ExtraModeOneTime:
		return nil
	}
	return &InputError{
		Field:  "extraMode",
		Value:  mode,
		Reason: fmt.Sprintf("must be %s or %s", constants.ExtraModeRecurring, constants.ExtraModeOneTime),
	}
}
