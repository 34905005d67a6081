// Package loans implements fixed-rate amortization: the closed-form monthly
// payment, period-by-period schedule projection and extra payment analysis.
package loans

import (
	"fmt"
	"math"
	"strconv"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Input holds the loan parameters collected from the user.
type Input struct {
	Principal  float64 `json:"principal" yaml:"principal"`
	AnnualRate float64 `json:"annualRate" yaml:"annualRate"` // percent, e.g. 5.0
	Years      float64 `json:"years" yaml:"years"`
	StartDate  string  `json:"startDate,omitempty" yaml:"startDate,omitempty"` // YYYY-MM of the first payment
}

// Validate checks that the principal, rate and term are positive and that the
// optional start month is well formed.
func (in Input) Validate() error {
	if err := validation.ValidateLoan(in.Principal, in.AnnualRate, in.Years); err != nil {
		return err
	}
	if _, err := datetime.NormalizeMonth(in.StartDate); err != nil {
		return &validation.InputError{Field: "startDate", Value: in.StartDate, Reason: "must be a YYYY-MM month"}
	}
	return nil
}

// MonthlyRate is the periodic interest rate.
func (in Input) MonthlyRate() float64 {
	return mathutil.MonthlyRate(in.AnnualRate)
}

// PaymentCount is the exact number of scheduled payments, which is fractional
// for terms that are not a whole number of months.
func (in Input) PaymentCount() float64 {
	return in.Years * constants.MonthsPerYear
}

// NominalPayments is the scheduled number of payment periods rounded up to a
// whole period.
func (in Input) NominalPayments() int {
	return int(math.Ceil(in.PaymentCount() - 1e-9))
}

// Summary holds the headline figures of a calculation, rounded to cents.
type Summary struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Payment holds the values for a given payment.
type Payment struct {
	Number    int     `json:"month"`
	Date      string  `json:"date,omitempty"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard annuity formula M = P·r·(1+r)^n / ((1+r)^n − 1), evaluated as
// P·r / (1 − (1+r)^−n) so that neither tiny nor huge rates overflow.
func CalculateMonthlyPayment(principal, annualInterestRate, paymentCount float64) float64 {
	if annualInterestRate == 0 {
		return principal / paymentCount
	}

	periodicInterestRate := mathutil.MonthlyRate(annualInterestRate)
	discount := -math.Expm1(-paymentCount * math.Log1p(periodicInterestRate))
	return principal * periodicInterestRate / discount
}

// monthlyPayment returns the exact payment for a validated input, rejecting
// combinations whose payment or lifetime total cannot be represented.
func (in Input) monthlyPayment() (float64, error) {
	n := in.PaymentCount()
	payment := CalculateMonthlyPayment(in.Principal, in.AnnualRate, n)
	if !mathutil.IsFinite(payment) || !mathutil.IsFinite(payment*n) || payment <= 0 {
		return 0, &validation.InputError{
			Field:  "rate",
			Value:  strconv.FormatFloat(in.AnnualRate, 'f', -1, 64),
			Reason: "term/rate too large to compute",
		}
	}
	return payment, nil
}

// CalculateInterestPayment calculates the interest accrued on a balance over
// one period.
func CalculateInterestPayment(remainingBalance, monthlyRate float64) float64 {
	return remainingBalance * monthlyRate
}

// Calculate computes the fixed monthly payment and lifetime totals for a loan.
// Invalid input returns an error wrapping validation.ErrInvalidInput and a
// zero Summary.
func Calculate(input Input) (Summary, error) {
	if err := input.Validate(); err != nil {
		return Summary{}, err
	}

	n := input.PaymentCount()
	monthlyPayment, err := input.monthlyPayment()
	if err != nil {
		return Summary{}, err
	}
	totalPayment := monthlyPayment * n
	totalInterest := totalPayment - input.Principal

	return Summary{
		MonthlyPayment: mathutil.Round(monthlyPayment),
		TotalPayment:   mathutil.Round(totalPayment),
		TotalInterest:  mathutil.Round(totalInterest),
	}, nil
}

// exactTotalInterest is the unrounded lifetime interest of the plain schedule.
func exactTotalInterest(input Input) float64 {
	n := input.PaymentCount()
	return CalculateMonthlyPayment(input.Principal, input.AnnualRate, n)*n - input.Principal
}

// Totals sums the payment, principal and interest columns of a schedule.
func Totals(schedule []Payment) (payment, principal, interest float64) {
	for _, p := range schedule {
		payment += p.Payment
		principal += p.Principal
		interest += p.Interest
	}
	return payment, principal, interest
}

// PayoffDate returns the month of the final payment in a dated schedule, or
// an empty string when the schedule is undated.
func PayoffDate(schedule []Payment) string {
	if len(schedule) == 0 {
		return ""
	}
	return schedule[len(schedule)-1].Date
}

// ScheduleFor projects the plain schedule for input with the package default
// generator.
func ScheduleFor(input Input) ([]Payment, error) {
	return NewScheduleGenerator(nil, GeneratorOptions{}).Amortize(input, nil)
}

// String renders a summary for log lines.
func (s Summary) String() string {
	return fmt.Sprintf("monthly=%.2f total=%.2f interest=%.2f", s.MonthlyPayment, s.TotalPayment, s.TotalInterest)
}

// logFields returns the zap fields used whenever an input is logged.
func (in Input) logFields() []zap.Field {
	return []zap.Field{
		zap.Float64("principal", in.Principal),
		zap.Float64("annualRate", in.AnnualRate),
		zap.Float64("years", in.Years),
	}
}
