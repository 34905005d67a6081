// Package export serializes payment schedules and scenario comparisons as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

// ScheduleHeader is the header row of a schedule export.
var ScheduleHeader = []string{"Month", "Payment", "Principal", "Interest", "Balance"}

// ScenarioHeader is the header row of a scenario comparison export.
var ScenarioHeader = []string{"Scenario", "Loan Amount", "Rate (%)", "Term (years)", "Monthly Payment", "Total Payment", "Total Interest"}

// ScheduleFilename and ScenariosFilename are the suggested download names.
const (
	ScheduleFilename  = "amortization-schedule.csv"
	ScenariosFilename = "loan-scenarios.csv"
)

// Amount formats a number with exactly two decimals, rounding half away from
// zero.
func Amount(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// WriteSchedule writes one row per payment period.
func WriteSchedule(w io.Writer, schedule []loans.Payment) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ScheduleHeader); err != nil {
		return fmt.Errorf("failed to write schedule header: %w", err)
	}
	for _, p := range schedule {
		record := []string{
			strconv.Itoa(p.Number),
			Amount(p.Payment),
			Amount(p.Principal),
			Amount(p.Interest),
			Amount(p.Balance),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write payment %d: %w", p.Number, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteScenarios writes one row per saved scenario in ledger order.
func WriteScenarios(w io.Writer, scenarios []ledger.Scenario) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ScenarioHeader); err != nil {
		return fmt.Errorf("failed to write scenario header: %w", err)
	}
	for _, s := range scenarios {
		record := []string{
			s.Name,
			Amount(s.Input.Principal),
			Amount(s.Input.AnnualRate),
			Amount(s.Input.Years),
			Amount(s.Summary.MonthlyPayment),
			Amount(s.Summary.TotalPayment),
			Amount(s.Summary.TotalInterest),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write scenario %s: %w", s.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ScheduleString renders a schedule export as a string.
func ScheduleString(schedule []loans.Payment) (string, error) {
	var b strings.Builder
	if err := WriteSchedule(&b, schedule); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ScenariosString renders a scenario export as a string.
func ScenariosString(scenarios []ledger.Scenario) (string, error) {
	var b strings.Builder
	if err := WriteScenarios(&b, scenarios); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ReadSchedule parses a schedule export back into payments. Values carry the
// two decimals that were written.
func ReadSchedule(r io.Reader) ([]loans.Payment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ScheduleHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schedule csv is empty")
		}
		return nil, fmt.Errorf("failed to read schedule header: %w", err)
	}
	for i, name := range ScheduleHeader {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("unexpected column %d header %q, expected %q", i+1, header[i], name)
		}
	}

	var schedule []loans.Payment
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule row: %w", err)
		}

		number, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", record[0], err)
		}
		values := make([]float64, 4)
		for i := range values {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q in month %d: %w", ScheduleHeader[i+1], record[i+1], number, err)
			}
			values[i] = v
		}
		schedule = append(schedule, loans.Payment{
			Number:    number,
			Payment:   values[0],
			Principal: values[1],
			Interest:  values[2],
			Balance:   values[3],
		})
	}
	return schedule, nil
}
