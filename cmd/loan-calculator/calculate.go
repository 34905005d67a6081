package main

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type calculateFlags struct {
	amount    string
	rate      string
	years     string
	start     string
	extra     string
	extraMode string
	target    int
	schedule  bool
}

func newCalculateCmd(a *app) *cobra.Command {
	var f calculateFlags

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the payment, totals and optional schedule of a loan",
		Example: `  loan-calculator calculate --amount 250,000 --rate 4.5 --years 30
  loan-calculator calculate --amount 100000 --rate 5 --years 30 --extra 100 --schedule --output-format csv
  loan-calculator calculate --amount 100000 --rate 5 --years 30 --target-months 180`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runCalculate(cmd, a, f)
			if err != nil {
				a.logger.Error("calculation failed",
					zap.String("op", "main.calculate"),
					zap.Error(err),
				)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.amount, "amount", "", "loan amount, e.g. 250000 or 250,000")
	flags.StringVar(&f.rate, "rate", "", "annual interest rate in percent, e.g. 4.5")
	flags.StringVar(&f.years, "years", "", "loan term in years")
	flags.StringVar(&f.start, "start", "", "month of the first payment (YYYY-MM)")
	flags.StringVar(&f.extra, "extra", "", "extra payment amount")
	flags.StringVar(&f.extraMode, "extra-mode", constants.ExtraModeRecurring, "extra payment mode: recurring or one-time")
	flags.IntVar(&f.target, "target-months", 0, "find the extra payment that pays the loan off within this many months")
	flags.BoolVar(&f.schedule, "schedule", false, "include the full amortization schedule")
	flags.String("output-format", "", "output format override: pretty, csv, json")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("years")
	cmd.MarkFlagsMutuallyExclusive("extra", "target-months")
	_ = a.v.BindPFlag("output.format", flags.Lookup("output-format"))

	return cmd
}

func parseInput(f calculateFlags) (loans.Input, error) {
	amount, err := validation.ParsePositive("amount", f.amount)
	if err != nil {
		return loans.Input{}, err
	}
	rate, err := validation.ParsePositive("rate", f.rate)
	if err != nil {
		return loans.Input{}, err
	}
	years, err := validation.ParsePositive("years", f.years)
	if err != nil {
		return loans.Input{}, err
	}
	input := loans.Input{Principal: amount, AnnualRate: rate, Years: years, StartDate: f.start}
	return input, input.Validate()
}

func runCalculate(cmd *cobra.Command, a *app, f calculateFlags) error {
	input, err := parseInput(f)
	if err != nil {
		return err
	}

	outputFormat := a.conf.Output.Format
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	svc, err := calculator.FromConfig(a.conf, a.logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = svc.Close()
	}()

	ctx := cmd.Context()
	report := output.Report{Input: input}

	report.Summary, err = svc.Calculate(ctx, input)
	if err != nil {
		return err
	}

	if f.extra != "" {
		amount, err := validation.ParsePositive("extraAmount", f.extra)
		if err != nil {
			return err
		}
		result, err := svc.ExtraPayment(ctx, input, loans.ExtraPayment{Amount: amount, Mode: loans.ExtraMode(f.extraMode)})
		if err != nil {
			return err
		}
		if f.schedule {
			report.Schedule = result.Impact.Schedule
		}
		result.Impact.Schedule = nil
		report.Extra = &result
	} else if f.schedule {
		result, err := svc.Schedule(ctx, input)
		if err != nil {
			return err
		}
		report.Schedule = result.Payments
	}

	if cmd.Flags().Changed("target-months") {
		target, err := svc.PayoffTarget(ctx, input, f.target, loans.ExtraMode(f.extraMode))
		if err != nil {
			return err
		}
		report.Target = &target
	}

	if err := output.Write(cmd.OutOrStdout(), outputFormat, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
