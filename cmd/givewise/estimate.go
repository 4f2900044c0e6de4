package main

import (
	"github.com/iwvelando/givewise/internal/estimate"
	"github.com/iwvelando/givewise/internal/rates"
	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/iwvelando/givewise/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inputFlags overrides the configured defaults for the flags that were set.
type inputFlags struct {
	amount           float64
	province         string
	income           float64
	giftType         string
	adjustedCostBase float64
}

func (f *inputFlags) register(cmd *cobra.Command, withGiftType bool) {
	flags := cmd.Flags()
	flags.Float64Var(&f.amount, "amount", constants.DefaultAmount, "donation amount in dollars")
	flags.StringVar(&f.province, "province", constants.DefaultProvince, "province or territory code (AB, BC, ..., OTHER)")
	flags.Float64Var(&f.income, "income", constants.DefaultIncome, "annual taxable income in dollars")
	flags.Float64Var(&f.adjustedCostBase, "acb", constants.DefaultAdjustedCostBase, "adjusted cost base of donated securities")
	if withGiftType {
		flags.StringVar(&f.giftType, "gift-type", constants.DefaultGiftType, "cash or securities")
	}
}

func (f *inputFlags) apply(cmd *cobra.Command, in estimate.Input) (estimate.Input, error) {
	flags := cmd.Flags()
	if flags.Changed("amount") {
		in.Amount = f.amount
	}
	if flags.Changed("province") {
		in.Province = f.province
	}
	if flags.Changed("income") {
		in.Income = f.income
	}
	if flags.Changed("acb") {
		in.AdjustedCostBase = f.adjustedCostBase
	}
	if flags.Changed("gift-type") {
		giftType, err := estimate.ParseGiftType(f.giftType)
		if err != nil {
			return in, err
		}
		in.GiftType = giftType
	}
	return in, nil
}

func warnInput(logger *zap.Logger, in estimate.Input, op string) {
	for _, warning := range estimate.Validate(in) {
		logger.Warn(warning, zap.String("op", op))
	}
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the tax credit and net cost of one donation",
		Example: `  givewise estimate --amount 1000 --province ON --income 80000
  givewise estimate --amount 5000 --gift-type securities --acb 1200 --output-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer s.close()

			in, err := flags.apply(cmd, s.conf.DefaultInput())
			if err != nil {
				return err
			}
			warnInput(s.logger, in, "main.estimate")

			result := estimate.Calculate(in)
			s.logger.Debug("estimate computed",
				zap.String("op", "main.estimate"),
				zap.String("province", result.ProvinceName),
				zap.Float64("credit", result.Credit.Total),
				zap.Float64("netCost", result.NetCost),
			)

			w := cmd.OutOrStdout()
			switch s.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvFormat(w, result)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, result)
			default:
				output.PrettyFormat(w, result)
				return nil
			}
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare donating cash against donating appreciated securities",
		Example: `  givewise compare --amount 10000 --acb 4000 --province BC --income 300000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer s.close()

			in, err := flags.apply(cmd, s.conf.DefaultInput())
			if err != nil {
				return err
			}
			in.GiftType = estimate.Securities
			warnInput(s.logger, in, "main.compare")

			c := estimate.Compare(in)
			w := cmd.OutOrStdout()
			switch s.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvFormat(w, c.Cash, c.Securities)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, c)
			default:
				output.PrettyComparison(w, c)
				return nil
			}
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newProvincesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provinces",
		Short: "List the donation credit rates for every province",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer s.close()

			w := cmd.OutOrStdout()
			switch s.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvProvinces(w, rates.Provinces())
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, struct {
					Federal   rates.Federal    `json:"federal"`
					Provinces []rates.Province `json:"provinces"`
				}{rates.FederalRates(), rates.Provinces()})
			default:
				output.PrettyProvinces(w, rates.Provinces())
				return nil
			}
		},
	}
}
