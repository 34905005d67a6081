package loans

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// ExtraMode selects when an extra payment is applied.
type ExtraMode string

const (
	// ExtraRecurring adds the extra amount to every payment.
	ExtraRecurring ExtraMode = constants.ExtraModeRecurring
	// ExtraOneTime adds the extra amount to the first payment only.
	ExtraOneTime ExtraMode = constants.ExtraModeOneTime
)

// ExtraPayment is an amount paid on top of the scheduled payment.
type ExtraPayment struct {
	Amount float64   `json:"amount"`
	Mode   ExtraMode `json:"mode"`
}

// Validate requires a positive amount and a known mode. An empty mode is
// treated as recurring.
func (e ExtraPayment) Validate() error {
	if err := validation.RequirePositive("extraAmount", e.Amount); err != nil {
		return err
	}
	return validation.ValidateExtraMode(string(e.Mode))
}

// amountFor returns the extra amount due on the given 1-based period.
func (e *ExtraPayment) amountFor(period int) float64 {
	if e == nil {
		return 0
	}
	if e.Mode == ExtraOneTime && period != 1 {
		return 0
	}
	return e.Amount
}

// ScheduleParams are the inputs to a schedule projection.
type ScheduleParams struct {
	Principal       float64
	MonthlyRate     float64
	NominalPayments int
	MonthlyPayment  float64
	Extra           *ExtraPayment
	StartDate       string
}

// GeneratorOptions tune the projection guards. Zero values select the
// defaults.
type GeneratorOptions struct {
	// SafetyFactor caps a projection at SafetyFactor × NominalPayments periods.
	SafetyFactor int
	// Epsilon is the balance at or below which the loan counts as paid off.
	Epsilon float64
}

// ScheduleGenerator projects amortization schedules.
type ScheduleGenerator struct {
	logger       *zap.Logger
	safetyFactor int
	epsilon      float64
}

// NewScheduleGenerator creates a new generator instance.
func NewScheduleGenerator(logger *zap.Logger, opts GeneratorOptions) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SafetyFactor <= 0 {
		opts.SafetyFactor = constants.DefaultSafetyFactor
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = constants.BalanceEpsilon
	}
	return &ScheduleGenerator{logger: logger, safetyFactor: opts.SafetyFactor, epsilon: opts.Epsilon}
}

// SafetyFactor reports the configured projection cap multiple.
func (g *ScheduleGenerator) SafetyFactor() int {
	return g.safetyFactor
}

// ProjectSchedule projects a schedule with the default generator.
func ProjectSchedule(params ScheduleParams) ([]Payment, error) {
	return NewScheduleGenerator(nil, GeneratorOptions{}).Generate(params)
}

func (p ScheduleParams) validate() error {
	if err := validation.RequirePositive("principal", p.Principal); err != nil {
		return err
	}
	if p.MonthlyRate < 0 || !mathutil.IsFinite(p.MonthlyRate) {
		return &validation.InputError{Field: "monthlyRate", Value: fmt.Sprint(p.MonthlyRate), Reason: "must be a non-negative number"}
	}
	if p.NominalPayments <= 0 {
		return &validation.InputError{Field: "nominalPayments", Value: fmt.Sprint(p.NominalPayments), Reason: "must be a positive number"}
	}
	if p.NominalPayments > constants.MaxNominalPayments {
		return &validation.InputError{Field: "nominalPayments", Value: fmt.Sprint(p.NominalPayments), Reason: fmt.Sprintf("must be at most %d", constants.MaxNominalPayments)}
	}
	if err := validation.RequirePositive("monthlyPayment", p.MonthlyPayment); err != nil {
		return err
	}
	if p.Extra != nil {
		if err := p.Extra.Validate(); err != nil {
			return err
		}
	}
	if _, err := datetime.NormalizeMonth(p.StartDate); err != nil {
		return &validation.InputError{Field: "startDate", Value: p.StartDate, Reason: "must be a YYYY-MM month"}
	}
	return nil
}

// Generate walks the loan period by period until the balance is retired or
// the safety cap is reached. The final payment is capped at interest plus the
// outstanding balance so the balance never goes negative.
func (g *ScheduleGenerator) Generate(params ScheduleParams) ([]Payment, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	startDate, _ := datetime.NormalizeMonth(params.StartDate)

	if params.MonthlyPayment+params.Extra.amountFor(1) <= CalculateInterestPayment(params.Principal, params.MonthlyRate) {
		g.logger.Warn("scheduled payment does not cover first period interest",
			zap.String("op", "loans.Generate"),
			zap.Float64("principal", params.Principal),
			zap.Float64("monthlyPayment", params.MonthlyPayment),
		)
	}
	if params.Extra != nil {
		g.logger.Debug(fmt.Sprintf("applying %s extra payment %.2f", params.Extra.mode(), params.Extra.Amount),
			zap.String("op", "loans.Generate"),
		)
	}

	limit := g.safetyFactor * params.NominalPayments
	schedule := make([]Payment, 0, min(params.NominalPayments, constants.MaxNominalPayments))
	balance := params.Principal

	for period := 1; balance > g.epsilon; period++ {
		if period > limit {
			g.logger.Warn("schedule projection reached safety cap",
				zap.String("op", "loans.Generate"),
				zap.Int("periods", limit),
				zap.Float64("remainingBalance", balance),
			)
			break
		}

		interest := CalculateInterestPayment(balance, params.MonthlyRate)
		scheduled := params.MonthlyPayment + params.Extra.amountFor(period)
		actual := mathutil.Min(scheduled, interest+balance)
		principal := actual - interest
		balance = mathutil.Max(balance-principal, 0)

		payment := Payment{
			Number:    period,
			Payment:   actual,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		}
		if startDate != "" {
			date, err := datetime.PaymentMonth(startDate, period)
			if err != nil {
				return nil, err
			}
			payment.Date = date
		}
		schedule = append(schedule, payment)
	}

	return schedule, nil
}

// Amortize validates input and projects its schedule using the exact
// (unrounded) monthly payment.
func (g *ScheduleGenerator) Amortize(input Input, extra *ExtraPayment) ([]Payment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	monthlyPayment, err := input.monthlyPayment()
	if err != nil {
		return nil, err
	}
	g.logger.Debug("projecting amortization schedule",
		append(input.logFields(), zap.String("op", "loans.Amortize"))...,
	)
	return g.Generate(ScheduleParams{
		Principal:       input.Principal,
		MonthlyRate:     input.MonthlyRate(),
		NominalPayments: input.NominalPayments(),
		MonthlyPayment:  monthlyPayment,
		Extra:           extra,
		StartDate:       input.StartDate,
	})
}

func (e *ExtraPayment) mode() ExtraMode {
	if e.Mode == "" {
		return ExtraRecurring
	}
	return e.Mode
}

// ExtraPaymentImpact compares a schedule with extra payments against the plain
// schedule for the same loan.
type ExtraPaymentImpact struct {
	Extra                 ExtraPayment `json:"extra"`
	OriginalPayments      int          `json:"originalPayments"`
	NewPayments           int          `json:"newPayments"`
	MonthsSaved           int          `json:"monthsSaved"`
	OriginalTotalInterest float64      `json:"originalTotalInterest"`
	NewTotalInterest      float64      `json:"newTotalInterest"`
	NewTotalPayment       float64      `json:"newTotalPayment"`
	InterestSaved         float64      `json:"interestSaved"`
	PayoffDate            string       `json:"payoffDate,omitempty"`
	Schedule              []Payment    `json:"schedule"`
}

// SummarizeImpact computes months and interest saved by a re-projected
// schedule relative to the nominal payment count and the original lifetime
// interest. The interest figure is unrounded.
func SummarizeImpact(nominalPayments int, originalTotalInterest float64, schedule []Payment) (monthsSaved int, interestSaved float64) {
	_, _, interest := Totals(schedule)
	return nominalPayments - len(schedule), originalTotalInterest - interest
}

// AnalyzeExtraPayment re-projects the loan with an extra payment policy and
// reports what it saves. A non-positive extra amount is rejected.
func (g *ScheduleGenerator) AnalyzeExtraPayment(input Input, extra ExtraPayment) (ExtraPaymentImpact, error) {
	if err := input.Validate(); err != nil {
		return ExtraPaymentImpact{}, err
	}
	if err := extra.Validate(); err != nil {
		return ExtraPaymentImpact{}, err
	}
	extra.Mode = extra.mode()

	schedule, err := g.Amortize(input, &extra)
	if err != nil {
		return ExtraPaymentImpact{}, err
	}

	originalInterest := exactTotalInterest(input)
	monthsSaved, interestSaved := SummarizeImpact(input.NominalPayments(), originalInterest, schedule)
	totalPayment, _, totalInterest := Totals(schedule)

	impact := ExtraPaymentImpact{
		Extra:                 extra,
		OriginalPayments:      input.NominalPayments(),
		NewPayments:           len(schedule),
		MonthsSaved:           monthsSaved,
		OriginalTotalInterest: mathutil.Round(originalInterest),
		NewTotalInterest:      mathutil.Round(totalInterest),
		NewTotalPayment:       mathutil.Round(totalPayment),
		InterestSaved:         mathutil.Round(interestSaved),
		PayoffDate:            PayoffDate(schedule),
		Schedule:              schedule,
	}

	g.logger.Debug("extra payment analyzed",
		append(input.logFields(),
			zap.String("op", "loans.AnalyzeExtraPayment"),
			zap.Int("monthsSaved", impact.MonthsSaved),
			zap.Float64("interestSaved", impact.InterestSaved),
		)...,
	)
	return impact, nil
}
