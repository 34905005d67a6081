// Package datetime provides month arithmetic for dating payment schedules.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the month format accepted for start dates and used
	// when labelling payments.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// NormalizeMonth trims and validates a YYYY-MM month string. An empty string
// is returned unchanged.
func NormalizeMonth(date string) (string, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return "", nil
	}
	t, err := time.Parse(DateTimeLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("expected month in %s format, got %q", DateTimeLayout, date)
	}
	return t.Format(DateTimeLayout), nil
}

// PaymentMonth returns the month in which the given 1-based payment falls
// when the first payment is made in startMonth.
func PaymentMonth(startMonth string, paymentNumber int) (string, error) {
	if paymentNumber < 1 {
		return "", fmt.Errorf("payment number must be at least 1, got %d", paymentNumber)
	}
	return OffsetDate(startMonth, DateTimeLayout, paymentNumber-1)
}
