// Package taxcalc computes the charitable donation tax credit and the capital
// gains tax avoided by donating appreciated securities in kind.
//
// All functions are pure float64 arithmetic over the static rate table. No
// rounding is applied and inputs are not validated; negative or non-finite
// values flow through the arithmetic unchanged.
package taxcalc

import (
	"github.com/iwvelando/givewise/internal/rates"
	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/iwvelando/givewise/pkg/mathutil"
)

// Credit is the donation credit split into its components.
type Credit struct {
	Federal    float64 `json:"federal"`
	Provincial float64 `json:"provincial"`
	Total      float64 `json:"total"`
	// HighRatePortion is the part of the donation above the first tier that
	// earned the federal high-income rate.
	HighRatePortion float64 `json:"highRatePortion"`
}

// DonationCredit returns the combined federal and provincial credit for a
// donation of donationAmount by a taxpayer with the given annual income.
func DonationCredit(donationAmount float64, provinceCode string, income float64) float64 {
	return CreditBreakdown(donationAmount, provinceCode, income).Total
}

// CreditBreakdown is DonationCredit with the federal and provincial parts kept apart.
func CreditBreakdown(donationAmount float64, provinceCode string, income float64) Credit {
	fed, highRate := federalCredit(donationAmount, income)
	prov := ProvincialCredit(donationAmount, provinceCode)
	return Credit{
		Federal:         fed,
		Provincial:      prov,
		Total:           fed + prov,
		HighRatePortion: highRate,
	}
}

// FederalCredit returns the federal component of the donation credit.
//
// The high-income rate only applies to the lesser of the donation above the
// first tier and the income above the federal high-income threshold.
func FederalCredit(donationAmount, income float64) float64 {
	credit, _ := federalCredit(donationAmount, income)
	return credit
}

func federalCredit(donationAmount, income float64) (credit, highRatePortion float64) {
	fed := rates.FederalRates()
	if donationAmount <= constants.DonationTierThreshold {
		return donationAmount * fed.First200Rate, 0
	}

	remainder := donationAmount - constants.DonationTierThreshold
	incomeOverThreshold := mathutil.Max(0, income-fed.HighIncomeThreshold)
	atHighRate := mathutil.Min(remainder, incomeOverThreshold)
	atStandardRate := remainder - atHighRate

	credit = constants.DonationTierThreshold*fed.First200Rate +
		atHighRate*fed.HighIncomeOver200Rate +
		atStandardRate*fed.Over200Rate
	return credit, atHighRate
}

// ProvincialCredit returns the provincial component of the donation credit.
// Provinces have no high-income split.
func ProvincialCredit(donationAmount float64, provinceCode string) float64 {
	prov := rates.Lookup(provinceCode)
	if donationAmount <= constants.DonationTierThreshold {
		return donationAmount * prov.First200Rate
	}
	return constants.DonationTierThreshold*prov.First200Rate +
		(donationAmount-constants.DonationTierThreshold)*prov.Over200Rate
}

// CapitalGainsTaxSaved estimates the tax that selling the securities would have
// triggered, which is avoided by donating them directly.
//
// The province's top marginal rate stands in for the donor's own marginal rate.
func CapitalGainsTaxSaved(fairMarketValue, adjustedCostBase float64, provinceCode string) float64 {
	gain := mathutil.Max(0, fairMarketValue-adjustedCostBase)
	if gain == 0 {
		return 0
	}
	taxableGain := gain * constants.CapitalGainsInclusionRate
	return taxableGain * rates.Lookup(provinceCode).TopMarginalRate
}
