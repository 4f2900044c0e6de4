// Package rates holds the static charitable donation credit rates for the
// federal government and each province or territory.
package rates

import (
	"sort"

	"github.com/samber/lo"
)

// OtherCode is the code of the fallback record used for territories and any
// unrecognized province code.
const OtherCode = "OTHER"

// Province holds the donation credit tiers and top marginal rate of one
// province or territory. All rates are fractions between 0 and 1.
type Province struct {
	Code            string  `json:"code" yaml:"code"`
	Name            string  `json:"name" yaml:"name"`
	First200Rate    float64 `json:"first200Rate" yaml:"first200Rate"`
	Over200Rate     float64 `json:"over200Rate" yaml:"over200Rate"`
	TopMarginalRate float64 `json:"topMarginalRate" yaml:"topMarginalRate"`
}

// Federal holds the federal donation credit tiers.
type Federal struct {
	First200Rate          float64 `json:"first200Rate" yaml:"first200Rate"`
	Over200Rate           float64 `json:"over200Rate" yaml:"over200Rate"`
	HighIncomeOver200Rate float64 `json:"highIncomeOver200Rate" yaml:"highIncomeOver200Rate"`
	HighIncomeThreshold   float64 `json:"highIncomeThreshold" yaml:"highIncomeThreshold"`
}

// 2024 estimates.
var federal = Federal{
	First200Rate:          0.15,
	Over200Rate:           0.29,
	HighIncomeOver200Rate: 0.33,
	HighIncomeThreshold:   246752,
}

var provinces = map[string]Province{
	"AB": {Code: "AB", Name: "Alberta", First200Rate: 0.10, Over200Rate: 0.21, TopMarginalRate: 0.48},
	"BC": {Code: "BC", Name: "British Columbia", First200Rate: 0.0506, Over200Rate: 0.168, TopMarginalRate: 0.535},
	"MB": {Code: "MB", Name: "Manitoba", First200Rate: 0.108, Over200Rate: 0.174, TopMarginalRate: 0.504},
	"NB": {Code: "NB", Name: "New Brunswick", First200Rate: 0.0968, Over200Rate: 0.1795, TopMarginalRate: 0.525},
	"NL": {Code: "NL", Name: "Newfoundland and Labrador", First200Rate: 0.087, Over200Rate: 0.183, TopMarginalRate: 0.548},
	"NS": {Code: "NS", Name: "Nova Scotia", First200Rate: 0.0879, Over200Rate: 0.21, TopMarginalRate: 0.54},
	// Ontario surtaxes are folded into the top marginal rate.
	"ON": {Code: "ON", Name: "Ontario", First200Rate: 0.0505, Over200Rate: 0.1115, TopMarginalRate: 0.5353},
	"PE": {Code: "PE", Name: "Prince Edward Island", First200Rate: 0.098, Over200Rate: 0.167, TopMarginalRate: 0.5137},
	// Quebec federal abatement is not modelled.
	"QC": {Code: "QC", Name: "Quebec", First200Rate: 0.20, Over200Rate: 0.24, TopMarginalRate: 0.5331},
	"SK": {Code: "SK", Name: "Saskatchewan", First200Rate: 0.105, Over200Rate: 0.145, TopMarginalRate: 0.475},

	OtherCode: {Code: OtherCode, Name: "Other / Territories", First200Rate: 0.064, Over200Rate: 0.179, TopMarginalRate: 0.48},
}

// Lookup returns the record for code, or the OTHER record when code is not
// recognized. Codes are matched exactly.
func Lookup(code string) Province {
	if p, ok := provinces[code]; ok {
		return p
	}
	return provinces[OtherCode]
}

// Known reports whether code has its own record rather than falling back to OTHER.
func Known(code string) bool {
	_, ok := provinces[code]
	return ok
}

// FederalRates returns the federal credit tiers.
func FederalRates() Federal {
	return federal
}

// Provinces returns every record sorted by code, with OTHER last.
func Provinces() []Province {
	codes := lo.Without(lo.Keys(provinces), OtherCode)
	sort.Strings(codes)
	codes = append(codes, OtherCode)
	return lo.Map(codes, func(code string, _ int) Province {
		return provinces[code]
	})
}
