// Package calculator serves loan calculations to the CLI and HTTP front ends,
// combining the amortization engine with result caching and the scenario
// ledger.
package calculator

import (
	"context"
	"encoding/json"

	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/internal/optimizer"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/optimization"
	"go.uber.org/zap"
)

// Operation names used for cache keys and metrics.
const (
	OpCalculate    = "calculate"
	OpSchedule     = "schedule"
	OpExtraPayment = "extra-payment"
	OpPayoffTarget = "payoff-target"
)

// ScheduleResult is a loan summary with its full payment schedule.
type ScheduleResult struct {
	Input         loans.Input     `json:"input"`
	Summary       loans.Summary   `json:"summary"`
	Payments      []loans.Payment `json:"schedule"`
	TotalPayment  float64         `json:"totalPayment"`
	TotalInterest float64         `json:"totalInterest"`
	PayoffDate    string          `json:"payoffDate,omitempty"`
}

// ExtraPaymentResult compares a loan with and without an extra payment.
type ExtraPaymentResult struct {
	Input    loans.Input              `json:"input"`
	Original loans.Summary            `json:"original"`
	Impact   loans.ExtraPaymentImpact `json:"impact"`
}

// Options configure a Service. A nil Cache disables caching and nil Metrics
// records nothing; the other fields fall back to defaults.
type Options struct {
	Logger    *zap.Logger
	Generator *loans.ScheduleGenerator
	Cache     cache.Cache
	Ledger    *ledger.Ledger
	Metrics   *Metrics
	Optimizer optimizer.Config
}

// Service runs calculations and keeps the scenario ledger.
type Service struct {
	logger    *zap.Logger
	generator *loans.ScheduleGenerator
	cache     cache.Cache
	ledger    *ledger.Ledger
	metrics   *Metrics
	optimizer *optimizer.Runner
}

// New creates a Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	generator := opts.Generator
	if generator == nil {
		generator = loans.NewScheduleGenerator(logger, loans.GeneratorOptions{})
	}
	l := opts.Ledger
	if l == nil {
		l = ledger.New(logger)
	}
	return &Service{
		logger:    logger,
		generator: generator,
		cache:     opts.Cache,
		ledger:    l,
		metrics:   opts.Metrics,
		optimizer: optimizer.NewRunner(logger, generator, opts.Optimizer),
	}
}

// Calculate returns the summary for input and records it as the current
// calculation.
func (s *Service) Calculate(ctx context.Context, input loans.Input) (loans.Summary, error) {
	var summary loans.Summary
	key := cache.Key(OpCalculate, []float64{input.Principal, input.AnnualRate, input.Years}, input.StartDate)

	if !s.lookup(ctx, key, &summary) {
		var err error
		summary, err = loans.Calculate(input)
		s.metrics.observe(OpCalculate, err)
		if err != nil {
			s.logger.Debug("calculation rejected",
				zap.String("op", "calculator.Calculate"),
				zap.Error(err),
			)
			return loans.Summary{}, err
		}
		s.store(ctx, key, summary)
	} else {
		s.metrics.observe(OpCalculate, nil)
	}

	s.ledger.Record(input, summary)
	s.logger.Info("loan calculated",
		zap.String("op", "calculator.Calculate"),
		zap.Float64("principal", input.Principal),
		zap.Float64("annualRate", input.AnnualRate),
		zap.Float64("years", input.Years),
		zap.String("summary", summary.String()),
	)
	return summary, nil
}

// Schedule returns the summary and full amortization schedule for input and
// records the summary as the current calculation.
func (s *Service) Schedule(ctx context.Context, input loans.Input) (ScheduleResult, error) {
	var result ScheduleResult
	key := cache.Key(OpSchedule, []float64{input.Principal, input.AnnualRate, input.Years}, input.StartDate)

	if !s.lookup(ctx, key, &result) {
		var err error
		result, err = s.schedule(input)
		s.metrics.observe(OpSchedule, err)
		if err != nil {
			return ScheduleResult{}, err
		}
		s.store(ctx, key, result)
	} else {
		s.metrics.observe(OpSchedule, nil)
	}

	s.ledger.Record(input, result.Summary)
	return result, nil
}

func (s *Service) schedule(input loans.Input) (ScheduleResult, error) {
	summary, err := loans.Calculate(input)
	if err != nil {
		return ScheduleResult{}, err
	}
	payments, err := s.generator.Amortize(input, nil)
	if err != nil {
		return ScheduleResult{}, err
	}
	totalPayment, _, totalInterest := loans.Totals(payments)
	return ScheduleResult{
		Input:         input,
		Summary:       summary,
		Payments:      payments,
		TotalPayment:  mathutil.Round(totalPayment),
		TotalInterest: mathutil.Round(totalInterest),
		PayoffDate:    loans.PayoffDate(payments),
	}, nil
}

// ExtraPayment analyzes the effect of extra on input.
func (s *Service) ExtraPayment(ctx context.Context, input loans.Input, extra loans.ExtraPayment) (ExtraPaymentResult, error) {
	var result ExtraPaymentResult
	key := cache.Key(OpExtraPayment,
		[]float64{input.Principal, input.AnnualRate, input.Years, extra.Amount},
		input.StartDate, string(extra.Mode),
	)

	if s.lookup(ctx, key, &result) {
		s.metrics.observe(OpExtraPayment, nil)
		return result, nil
	}

	original, err := loans.Calculate(input)
	if err == nil {
		var impact loans.ExtraPaymentImpact
		impact, err = s.generator.AnalyzeExtraPayment(input, extra)
		result = ExtraPaymentResult{Input: input, Original: original, Impact: impact}
	}
	s.metrics.observe(OpExtraPayment, err)
	if err != nil {
		return ExtraPaymentResult{}, err
	}

	s.logger.Info("extra payment analyzed",
		zap.String("op", "calculator.ExtraPayment"),
		zap.Float64("extra", extra.Amount),
		zap.String("mode", string(result.Impact.Extra.Mode)),
		zap.Int("monthsSaved", result.Impact.MonthsSaved),
		zap.Float64("interestSaved", result.Impact.InterestSaved),
	)
	s.store(ctx, key, result)
	return result, nil
}

// PayoffTarget finds the smallest extra payment that retires input within
// targetPayments periods.
func (s *Service) PayoffTarget(ctx context.Context, input loans.Input, targetPayments int, mode loans.ExtraMode) (optimization.Summary, error) {
	var summary optimization.Summary
	key := cache.Key(OpPayoffTarget,
		[]float64{input.Principal, input.AnnualRate, input.Years, float64(targetPayments)},
		input.StartDate, string(mode),
	)

	if s.lookup(ctx, key, &summary) {
		s.metrics.observe(OpPayoffTarget, nil)
		return summary, nil
	}

	summary, err := s.optimizer.RequiredExtra(input, targetPayments, mode)
	s.metrics.observe(OpPayoffTarget, err)
	if err != nil {
		return optimization.Summary{}, err
	}

	s.logger.Info("payoff target solved",
		zap.String("op", "calculator.PayoffTarget"),
		zap.Int("targetPayments", targetPayments),
		zap.Float64("extra", summary.Extra),
		zap.Bool("converged", summary.Converged),
	)
	s.store(ctx, key, summary)
	return summary, nil
}

// SaveScenario snapshots the current calculation into the ledger.
func (s *Service) SaveScenario(name string) (ledger.Scenario, error) {
	scenario, err := s.ledger.Add(name)
	if err != nil {
		return ledger.Scenario{}, err
	}
	s.metrics.setScenarios(s.ledger.Len())
	return scenario, nil
}

// SaveCalculation calculates input and saves it under name. The current
// calculation is left untouched.
func (s *Service) SaveCalculation(name string, input loans.Input) (ledger.Scenario, error) {
	summary, err := loans.Calculate(input)
	s.metrics.observe(OpCalculate, err)
	if err != nil {
		return ledger.Scenario{}, err
	}
	scenario := s.ledger.AddSnapshot(name, input, summary)
	s.metrics.setScenarios(s.ledger.Len())

	s.logger.Info("scenario saved",
		zap.String("op", "calculator.SaveCalculation"),
		zap.String("id", scenario.ID),
		zap.String("name", scenario.Name),
		zap.String("summary", summary.String()),
	)
	return scenario, nil
}

// Scenarios lists the saved scenarios in insertion order.
func (s *Service) Scenarios() []ledger.Scenario {
	return s.ledger.List()
}

// RemoveScenario deletes a saved scenario by id.
func (s *Service) RemoveScenario(id string) error {
	if err := s.ledger.Remove(id); err != nil {
		return err
	}
	s.metrics.setScenarios(s.ledger.Len())
	return nil
}

// ClearScenarios removes every saved scenario.
func (s *Service) ClearScenarios() {
	s.ledger.Clear()
	s.metrics.setScenarios(0)
}

// lookup decodes a cached value into out. Cache failures count as misses.
func (s *Service) lookup(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed",
			zap.String("op", "calculator.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.cacheLookup("error")
		return false
	}
	if !ok {
		s.metrics.cacheLookup("miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "calculator.lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.cacheLookup("error")
		return false
	}
	s.metrics.cacheLookup("hit")
	return true
}

func (s *Service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err == nil {
		err = s.cache.Set(ctx, key, data)
	}
	if err != nil {
		s.logger.Warn("cache store failed",
			zap.String("op", "calculator.store"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
