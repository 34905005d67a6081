package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
)

var thirtyYear = loans.Input{Principal: 100000, AnnualRate: 5, Years: 30, StartDate: "2025-01"}

func baseReport(t *testing.T) Report {
	t.Helper()
	summary, err := loans.Calculate(thirtyYear)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return Report{Input: thirtyYear, Summary: summary}
}

func extraResult(t *testing.T) *calculator.ExtraPaymentResult {
	t.Helper()
	svc := calculator.New(calculator.Options{})
	result, err := svc.ExtraPayment(context.Background(), thirtyYear, loans.ExtraPayment{Amount: 100})
	if err != nil {
		t.Fatalf("ExtraPayment() error = %v", err)
	}
	return &result
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, baseReport(t)); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Loan summary ---",
		"Loan amount     | $100,000.00",
		"Interest rate   | 5.00%",
		"Term            | 30 years (360 payments)",
		"Monthly payment | $536.82",
		"Total payment   | $193,255.78",
		"Total interest  | $93,255.78",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Amortization schedule") {
		t.Errorf("PrettyFormat printed a schedule that was not requested")
	}
}

func TestPrettyFormatWithSchedule(t *testing.T) {
	report := baseReport(t)
	schedule, err := loans.ScheduleFor(thirtyYear)
	if err != nil {
		t.Fatalf("ScheduleFor() error = %v", err)
	}
	report.Schedule = schedule

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, report); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Month | Date    | Payment") {
		t.Errorf("PrettyFormat missing schedule header")
	}
	if !strings.Contains(output, "    1 | 2025-01 |       $536.82 |       $120.15 |       $416.67 |    $99,879.85") {
		t.Errorf("PrettyFormat missing first schedule row:\n%s", output)
	}
	if !strings.Contains(output, "Payoff month    | 2054-12") {
		t.Errorf("PrettyFormat missing payoff month")
	}
}

func TestPrettyFormatWithExtra(t *testing.T) {
	report := baseReport(t)
	report.Extra = extraResult(t)

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, report); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Extra payment: $100.00 recurring ---",
		"(was 360)",
		"Interest saved  | $",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in:\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, baseReport(t)); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	expected := "Loan Amount,Rate (%),Term (years),Payments,Monthly Payment,Total Payment,Total Interest\n" +
		"100000.00,5.00,30.00,360,536.82,193255.78,93255.78\n"
	if buf.String() != expected {
		t.Errorf("CsvFormat() = %q, expected %q", buf.String(), expected)
	}
}

func TestCsvFormatExtra(t *testing.T) {
	report := baseReport(t)
	report.Extra = extraResult(t)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, report); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Extra Payment,Mode,Original Payments") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "100.00,recurring,360,") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func targetResult(t *testing.T) *optimization.Summary {
	t.Helper()
	svc := calculator.New(calculator.Options{})
	summary, err := svc.PayoffTarget(context.Background(), thirtyYear, 180, loans.ExtraRecurring)
	if err != nil {
		t.Fatalf("PayoffTarget() error = %v", err)
	}
	return &summary
}

func TestPayoffTargetReport(t *testing.T) {
	report := baseReport(t)
	report.Target = targetResult(t)

	var pretty bytes.Buffer
	if err := PrettyFormat(&pretty, report); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	for _, want := range []string{"--- Payoff in 180 payments ---", "Payments        | 180 (was 360)", "Payoff month    | 2039-12"} {
		if !strings.Contains(pretty.String(), want) {
			t.Errorf("PrettyFormat() missing %q in:\n%s", want, pretty.String())
		}
	}

	var csvOut bytes.Buffer
	if err := CsvFormat(&csvOut, report); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "180,recurring,") || !strings.HasSuffix(lines[1], ",true") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestCsvFormatSchedule(t *testing.T) {
	report := baseReport(t)
	report.Schedule, _ = loans.ScheduleFor(thirtyYear)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, report); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 361 {
		t.Errorf("expected header plus 360 rows, got %d lines", len(lines))
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", baseReport(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.MonthlyPayment != 536.82 {
		t.Errorf("MonthlyPayment = %v", decoded.Summary.MonthlyPayment)
	}
	if strings.Contains(buf.String(), `"schedule"`) {
		t.Errorf("empty schedule should be omitted")
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", baseReport(t)); err == nil {
		t.Errorf("expected error for unknown format")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for rejected format")
	}
}
