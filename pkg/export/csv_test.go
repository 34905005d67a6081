package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/pkg/loans"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{536.8216230121398, "536.82"},
		{0, "0.00"},
		{1.005, "1.01"},
		{93255.775, "93255.78"},
		{100000, "100000.00"},
	}

	for _, tt := range tests {
		if got := Amount(tt.input); got != tt.expected {
			t.Errorf("Amount(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	schedule, err := loans.ScheduleFor(loans.Input{Principal: 100000, AnnualRate: 5, Years: 30})
	if err != nil {
		t.Fatalf("ScheduleFor() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSchedule(&buf, schedule); err != nil {
		t.Fatalf("WriteSchedule() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Month,Payment,Principal,Interest,Balance" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != len(schedule)+1 {
		t.Fatalf("expected %d lines, got %d", len(schedule)+1, len(lines))
	}
	if lines[1] != "1,536.82,120.15,416.67,99879.85" {
		t.Errorf("unexpected first row %q", lines[1])
	}

	parsed, err := ReadSchedule(&buf)
	if err != nil {
		t.Fatalf("ReadSchedule() error = %v", err)
	}
	if len(parsed) != len(schedule) {
		t.Fatalf("round trip returned %d rows, expected %d", len(parsed), len(schedule))
	}
	for i := range schedule {
		want, got := schedule[i], parsed[i]
		if got.Number != want.Number {
			t.Fatalf("row %d: month %d, expected %d", i, got.Number, want.Number)
		}
		pairs := [][2]float64{
			{got.Payment, want.Payment},
			{got.Principal, want.Principal},
			{got.Interest, want.Interest},
			{got.Balance, want.Balance},
		}
		for _, p := range pairs {
			if math.Abs(p[0]-p[1]) > 0.005+1e-9 {
				t.Fatalf("row %d: value %v differs from %v by more than rounding", i, p[0], p[1])
			}
		}
	}
	if parsed[len(parsed)-1].Balance != 0 {
		t.Errorf("final balance = %v, expected 0", parsed[len(parsed)-1].Balance)
	}
}

func TestWriteScheduleEmpty(t *testing.T) {
	out, err := ScheduleString(nil)
	if err != nil {
		t.Fatalf("ScheduleString() error = %v", err)
	}
	if out != "Month,Payment,Principal,Interest,Balance\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWriteScenariosQuotesNames(t *testing.T) {
	l := ledger.New(nil)
	input := loans.Input{Principal: 100000, AnnualRate: 5, Years: 30}
	summary := loans.Summary{MonthlyPayment: 536.82, TotalPayment: 193255.78, TotalInterest: 93255.78}
	l.AddSnapshot(`House, "big" one`, input, summary)
	l.AddSnapshot("Plain", loans.Input{Principal: 250000, AnnualRate: 3.5, Years: 15}, loans.Summary{MonthlyPayment: 1787.21})

	out, err := ScenariosString(l.List())
	if err != nil {
		t.Fatalf("ScenariosString() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "Scenario,Loan Amount,Rate (%),Term (years),Monthly Payment,Total Payment,Total Interest" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if expected := `"House, ""big"" one",100000.00,5.00,30.00,536.82,193255.78,93255.78`; lines[1] != expected {
		t.Errorf("row 1 = %q, expected %q", lines[1], expected)
	}
	if expected := "Plain,250000.00,3.50,15.00,1787.21,0.00,0.00"; lines[2] != expected {
		t.Errorf("row 2 = %q, expected %q", lines[2], expected)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if records[1][0] != `House, "big" one` {
		t.Errorf("name did not survive quoting: %q", records[1][0])
	}
}

func TestReadScheduleErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Wrong header", "Period,Payment,Principal,Interest,Balance\n"},
		{"Short row", "Month,Payment,Principal,Interest,Balance\n1,2,3\n"},
		{"Bad month", "Month,Payment,Principal,Interest,Balance\nx,1,1,1,1\n"},
		{"Bad amount", "Month,Payment,Principal,Interest,Balance\n1,abc,1,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSchedule(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}
