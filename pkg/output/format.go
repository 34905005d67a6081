// Package output provides utilities for formatting and displaying loan
// calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/export"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is everything a single CLI invocation computed. Schedule, Extra and
// Target are optional; when Schedule and Extra are both set Schedule holds the
// schedule with the extra payment applied.
type Report struct {
	Input    loans.Input                    `json:"input"`
	Summary  loans.Summary                  `json:"summary"`
	Schedule []loans.Payment                `json:"schedule,omitempty"`
	Extra    *calculator.ExtraPaymentResult `json:"extra,omitempty"`
	Target   *optimization.Summary          `json:"payoffTarget,omitempty"`
}

// summaryHeader is the header row of a CSV summary.
var summaryHeader = []string{"Loan Amount", "Rate (%)", "Term (years)", "Payments", "Monthly Payment", "Total Payment", "Total Interest"}

// impactHeader is the header row of a CSV extra payment summary.
var impactHeader = []string{"Extra Payment", "Mode", "Original Payments", "New Payments", "Months Saved", "Original Total Interest", "New Total Interest", "Interest Saved", "Payoff Month"}

var targetHeader = []string{"Target Payments", "Mode", "Required Extra Payment", "Original Payments", "Payments", "Interest Saved", "Payoff Month", "Iterations", "Converged"}

// Write renders report in the named output format.
func Write(w io.Writer, outputFormat string, report Report) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return PrettyFormat(w, report)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.English)
	in, s := report.Input, report.Summary

	lines := []string{
		"--- Loan summary ---\n",
		p.Sprintf("Loan amount     | %s\n", format.Currency(in.Principal)),
		p.Sprintf("Interest rate   | %s\n", format.Percent(in.AnnualRate)),
		p.Sprintf("Term            | %s (%d payments)\n", format.Years(in.Years), in.NominalPayments()),
		p.Sprintf("Monthly payment | %s\n", format.Currency(s.MonthlyPayment)),
		p.Sprintf("Total payment   | %s\n", format.Currency(s.TotalPayment)),
		p.Sprintf("Total interest  | %s\n", format.Currency(s.TotalInterest)),
	}

	schedule := report.Schedule
	if report.Extra != nil {
		impact := report.Extra.Impact
		lines = append(lines,
			"\n",
			p.Sprintf("--- Extra payment: %s %s ---\n", format.Currency(impact.Extra.Amount), impact.Extra.Mode),
			p.Sprintf("Payments        | %d (was %d)\n", impact.NewPayments, impact.OriginalPayments),
			p.Sprintf("Months saved    | %d\n", impact.MonthsSaved),
			p.Sprintf("Total payment   | %s\n", format.Currency(impact.NewTotalPayment)),
			p.Sprintf("Total interest  | %s\n", format.Currency(impact.NewTotalInterest)),
			p.Sprintf("Interest saved  | %s\n", format.Currency(impact.InterestSaved)),
		)
		if impact.PayoffDate != "" {
			lines = append(lines, p.Sprintf("Payoff month    | %s\n", impact.PayoffDate))
		}
	} else if payoff := loans.PayoffDate(schedule); payoff != "" {
		lines = append(lines, p.Sprintf("Payoff month    | %s\n", payoff))
	}

	if t := report.Target; t != nil {
		lines = append(lines,
			"\n",
			p.Sprintf("--- Payoff in %d payments ---\n", t.TargetPayments),
			p.Sprintf("Extra payment   | %s %s\n", format.Currency(t.Extra), t.Mode),
			p.Sprintf("Payments        | %d (was %d)\n", t.Payments, t.OriginalPayments),
			p.Sprintf("Interest saved  | %s\n", format.Currency(t.InterestSaved)),
		)
		if t.PayoffDate != "" {
			lines = append(lines, p.Sprintf("Payoff month    | %s\n", t.PayoffDate))
		}
		for _, note := range t.Notes {
			lines = append(lines, p.Sprintf("Note            | %s\n", note))
		}
	}

	if len(schedule) > 0 {
		lines = append(lines,
			"\n",
			"--- Amortization schedule ---\n",
			"Month | Date    | Payment       | Principal     | Interest      | Balance\n",
			"_____ | _______ | _____________ | _____________ | _____________ | _____________\n",
		)
		for _, pmt := range schedule {
			date := pmt.Date
			if date == "" {
				date = "-"
			}
			lines = append(lines, p.Sprintf("%5d | %-7s | %13s | %13s | %13s | %13s\n",
				pmt.Number, date,
				format.Currency(pmt.Payment), format.Currency(pmt.Principal),
				format.Currency(pmt.Interest), format.Currency(pmt.Balance)))
		}
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format. A report with a schedule
// writes the schedule table. Otherwise it writes a single row for the extra
// payment analysis, the payoff target or the plain summary, in that order of
// preference.
func CsvFormat(w io.Writer, report Report) error {
	if report.Schedule != nil {
		return export.WriteSchedule(w, report.Schedule)
	}

	writer := csv.NewWriter(w)
	if t := report.Target; t != nil && report.Extra == nil {
		_ = writer.Write(targetHeader)
		_ = writer.Write([]string{
			strconv.Itoa(t.TargetPayments),
			t.Mode,
			export.Amount(t.Extra),
			strconv.Itoa(t.OriginalPayments),
			strconv.Itoa(t.Payments),
			export.Amount(t.InterestSaved),
			t.PayoffDate,
			strconv.Itoa(t.Iterations),
			strconv.FormatBool(t.Converged),
		})
	} else if report.Extra != nil {
		impact := report.Extra.Impact
		_ = writer.Write(impactHeader)
		_ = writer.Write([]string{
			export.Amount(impact.Extra.Amount),
			string(impact.Extra.Mode),
			strconv.Itoa(impact.OriginalPayments),
			strconv.Itoa(impact.NewPayments),
			strconv.Itoa(impact.MonthsSaved),
			export.Amount(impact.OriginalTotalInterest),
			export.Amount(impact.NewTotalInterest),
			export.Amount(impact.InterestSaved),
			impact.PayoffDate,
		})
	} else {
		in, s := report.Input, report.Summary
		_ = writer.Write(summaryHeader)
		_ = writer.Write([]string{
			export.Amount(in.Principal),
			export.Amount(in.AnnualRate),
			export.Amount(in.Years),
			strconv.Itoa(in.NominalPayments()),
			export.Amount(s.MonthlyPayment),
			export.Amount(s.TotalPayment),
			export.Amount(s.TotalInterest),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
