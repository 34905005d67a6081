// Package optimizer searches for the smallest extra payment that retires a
// loan within a target number of payments.
package optimizer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Config bounds the bisection.
type Config struct {
	// Tolerance is the width of the final search interval in currency units.
	Tolerance float64
	// MaxIterations caps the number of schedule projections.
	MaxIterations int
}

// maxCentScan bounds the final cent-by-cent refinement.
const maxCentScan = 0.1

// DefaultConfig searches to the cent.
func DefaultConfig() Config {
	return Config{Tolerance: constants.CurrencyTolerance, MaxIterations: constants.DefaultOptimizerIterations}
}

type Runner struct {
	logger    *zap.Logger
	generator *loans.ScheduleGenerator
	cfg       Config
}

type evaluation struct {
	value    float64
	payments int
	interest float64
	payoff   string
}

func (e evaluation) feasible(target int) bool {
	return e.payments <= target
}

// NewRunner creates a Runner. A nil generator uses the package defaults.
func NewRunner(logger *zap.Logger, generator *loans.ScheduleGenerator, cfg Config) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = loans.NewScheduleGenerator(logger, loans.GeneratorOptions{})
	}
	defaults := DefaultConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaults.Tolerance
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	return &Runner{logger: logger, generator: generator, cfg: cfg}
}

// RequiredExtra finds the smallest extra payment, rounded up to the cent,
// for which the loan is repaid in at most targetPayments periods. The number
// of payments only falls as the extra amount grows, so the search bisects
// between zero and the principal.
func (r *Runner) RequiredExtra(input loans.Input, targetPayments int, mode loans.ExtraMode) (optimization.Summary, error) {
	if err := input.Validate(); err != nil {
		return optimization.Summary{}, err
	}
	if targetPayments <= 0 {
		return optimization.Summary{}, &validation.InputError{Field: "targetMonths", Value: strconv.Itoa(targetPayments), Reason: "must be a positive number"}
	}
	if mode == "" {
		mode = loans.ExtraRecurring
	}
	if err := validation.ValidateExtraMode(string(mode)); err != nil {
		return optimization.Summary{}, err
	}

	baseline, err := r.evaluate(input, 0, mode)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		TargetPayments:   targetPayments,
		Mode:             string(mode),
		OriginalPayments: baseline.payments,
	}

	if baseline.feasible(targetPayments) {
		summary.Payments = baseline.payments
		summary.PayoffDate = baseline.payoff
		summary.Converged = true
		summary.Notes = []string{fmt.Sprintf("loan already pays off in %d payments without an extra payment", baseline.payments)}
		return summary, nil
	}

	lower, upper := 0.0, input.Principal
	best, err := r.evaluate(input, upper, mode)
	if err != nil {
		return optimization.Summary{}, err
	}

	iterations := 0
	for iterations < r.cfg.MaxIterations && math.Abs(upper-lower) > r.cfg.Tolerance {
		mid := lower + (upper-lower)/2
		evalMid, err := r.evaluate(input, mid, mode)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if evalMid.feasible(targetPayments) {
			best = evalMid
			upper = mid
		} else {
			lower = mid
		}
	}

	// Report a payable amount: the first whole cent above the infeasible
	// bound that meets the target, falling back to rounding up.
	for cent := math.Floor(lower*constants.DecimalPrecision)/constants.DecimalPrecision + constants.CurrencyTolerance; cent <= best.value && best.value-lower <= maxCentScan; cent += constants.CurrencyTolerance {
		cent = mathutil.Round(cent)
		evalCent, err := r.evaluate(input, cent, mode)
		if err != nil {
			return optimization.Summary{}, err
		}
		if evalCent.feasible(targetPayments) {
			best = evalCent
			break
		}
	}
	if mathutil.Round(best.value) != best.value {
		rounded := math.Ceil(best.value*constants.DecimalPrecision) / constants.DecimalPrecision
		if evalRounded, err := r.evaluate(input, rounded, mode); err == nil && evalRounded.feasible(targetPayments) {
			best = evalRounded
		}
	}

	summary.Extra = best.value
	summary.Payments = best.payments
	summary.PayoffDate = best.payoff
	summary.InterestSaved = mathutil.Round(baseline.interest - best.interest)
	summary.Iterations = iterations
	summary.Converged = best.feasible(targetPayments) && math.Abs(upper-lower) <= r.cfg.Tolerance
	if !summary.Converged {
		summary.Notes = []string{fmt.Sprintf("search stopped after %d iterations", iterations)}
	}

	r.logger.Debug("payoff target solved",
		zap.String("op", "optimizer.RequiredExtra"),
		zap.Int("targetPayments", targetPayments),
		zap.Float64("extra", summary.Extra),
		zap.Int("iterations", iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func (r *Runner) evaluate(input loans.Input, amount float64, mode loans.ExtraMode) (evaluation, error) {
	var extra *loans.ExtraPayment
	if amount > 0 {
		extra = &loans.ExtraPayment{Amount: amount, Mode: mode}
	}
	schedule, err := r.generator.Amortize(input, extra)
	if err != nil {
		return evaluation{}, err
	}
	_, _, interest := loans.Totals(schedule)
	return evaluation{
		value:    amount,
		payments: len(schedule),
		interest: interest,
		payoff:   loans.PayoffDate(schedule),
	}, nil
}
