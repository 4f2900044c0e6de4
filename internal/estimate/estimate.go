// Package estimate combines the donation credit and capital gains savings
// into the net after-tax cost of a gift.
package estimate

import (
	"fmt"

	"github.com/iwvelando/givewise/internal/rates"
	"github.com/iwvelando/givewise/internal/taxcalc"
	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/iwvelando/givewise/pkg/mathutil"
	"github.com/samber/lo"
)

// Input holds the donor's choices.
type Input struct {
	Amount   float64  `json:"amount" yaml:"amount"`
	Province string   `json:"province" yaml:"province"`
	Income   float64  `json:"income" yaml:"income"`
	GiftType GiftType `json:"giftType" yaml:"giftType"`
	// AdjustedCostBase only matters for securities.
	AdjustedCostBase float64 `json:"adjustedCostBase" yaml:"adjustedCostBase"`
}

// Result is the estimate for one Input.
type Result struct {
	Input                Input          `json:"input"`
	ProvinceName         string         `json:"provinceName"`
	FallbackProvince     bool           `json:"fallbackProvince"`
	Credit               taxcalc.Credit `json:"credit"`
	CapitalGainsTaxSaved float64        `json:"capitalGainsTaxSaved"`
	TotalSavings         float64        `json:"totalSavings"`
	NetCost              float64        `json:"netCost"`
	EffectiveRate        float64        `json:"effectiveRate"`
}

// Comparison holds the same donation made in cash and in securities.
type Comparison struct {
	Cash       Result `json:"cash"`
	Securities Result `json:"securities"`
	// Advantage is how much cheaper the securities gift is.
	Advantage float64 `json:"advantage"`
}

// DefaultInput returns the calculator's initial state.
func DefaultInput() Input {
	return Input{
		Amount:           constants.DefaultAmount,
		Province:         constants.DefaultProvince,
		Income:           constants.DefaultIncome,
		GiftType:         Cash,
		AdjustedCostBase: constants.DefaultAdjustedCostBase,
	}
}

// Calculate estimates the credit, the capital gains tax avoided and the net
// cost of in. Capital gains only apply to securities, whose fair market value
// is the donation amount.
func Calculate(in Input) Result {
	prov := rates.Lookup(in.Province)
	credit := taxcalc.CreditBreakdown(in.Amount, in.Province, in.Income)

	var gainsSaved float64
	if in.GiftType == Securities {
		gainsSaved = taxcalc.CapitalGainsTaxSaved(in.Amount, in.AdjustedCostBase, in.Province)
	}

	savings := credit.Total + gainsSaved
	return Result{
		Input:                in,
		ProvinceName:         prov.Name,
		FallbackProvince:     !rates.Known(in.Province),
		Credit:               credit,
		CapitalGainsTaxSaved: gainsSaved,
		TotalSavings:         savings,
		NetCost:              in.Amount - savings,
		EffectiveRate:        mathutil.EffectiveRate(savings, in.Amount),
	}
}

// Compare calculates in as both a cash and a securities gift.
func Compare(in Input) Comparison {
	cash, securities := in, in
	cash.GiftType = Cash
	securities.GiftType = Securities

	c := Comparison{
		Cash:       Calculate(cash),
		Securities: Calculate(securities),
	}
	c.Advantage = c.Cash.NetCost - c.Securities.NetCost
	return c
}

// Validate returns warnings about inputs the tax engine will accept but that
// probably do not mean what the donor intended. It never rejects input.
func Validate(in Input) []string {
	warnings := []string{
		lo.Ternary(mathutil.IsNegative(in.Amount), fmt.Sprintf("donation amount %.2f is negative", in.Amount), ""),
		lo.Ternary(mathutil.IsNegative(in.Income), fmt.Sprintf("income %.2f is negative", in.Income), ""),
		lo.Ternary(!rates.Known(in.Province),
			fmt.Sprintf("province %q is not recognized, using %s rates", in.Province, rates.Lookup(in.Province).Name), ""),
	}
	if in.GiftType == Securities {
		warnings = append(warnings,
			lo.Ternary(mathutil.IsNegative(in.AdjustedCostBase), fmt.Sprintf("adjusted cost base %.2f is negative", in.AdjustedCostBase), ""),
			lo.Ternary(in.AdjustedCostBase > in.Amount && in.Amount >= 0,
				"adjusted cost base exceeds the donation amount, there is no capital gain to avoid", ""),
		)
	}
	return lo.Compact(warnings)
}
