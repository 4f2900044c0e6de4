// Package output provides utilities for formatting and displaying donation estimates.
package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/iwvelando/givewise/internal/estimate"
	"github.com/iwvelando/givewise/internal/rates"
	"github.com/iwvelando/givewise/pkg/format"
	"github.com/iwvelando/givewise/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const rowFormat = "%-24s | %s\n"

var printer = message.NewPrinter(language.English)

// PrettyFormat writes a human-readable breakdown of one estimate.
func PrettyFormat(w io.Writer, r estimate.Result) {
	printer.Fprintf(w, "--- Estimate for a %s gift in %s ---\n", r.Input.GiftType, r.ProvinceName)
	printer.Fprintf(w, rowFormat, "Donation Receipt", format.Currency(r.Input.Amount))
	printer.Fprintf(w, rowFormat, "Federal Credit", credit(r.Credit.Federal))
	printer.Fprintf(w, rowFormat, "Provincial Credit", credit(r.Credit.Provincial))
	printer.Fprintf(w, rowFormat, "Charitable Tax Credit", credit(r.Credit.Total))
	if r.Input.GiftType == estimate.Securities {
		printer.Fprintf(w, rowFormat, "Capital Gains Tax Saved", credit(r.CapitalGainsTaxSaved))
	}
	printer.Fprintf(w, rowFormat, "Net Cost", format.Currency(r.NetCost))
	printer.Fprintf(w, "You save %s in taxes (%s of your gift).\n",
		format.Currency(r.TotalSavings), format.Percent(r.EffectiveRate))
}

// PrettyComparison writes the cash and securities estimates followed by the
// difference between them.
func PrettyComparison(w io.Writer, c estimate.Comparison) {
	PrettyFormat(w, c.Cash)
	printer.Fprintln(w)
	PrettyFormat(w, c.Securities)
	printer.Fprintln(w)
	if mathutil.IsZero(c.Advantage) {
		printer.Fprintln(w, "Donating securities costs the same as donating cash.")
		return
	}
	printer.Fprintf(w, "Donating securities instead of cash saves an extra %s.\n", format.Currency(c.Advantage))
}

// PrettyProvinces writes the rate table.
func PrettyProvinces(w io.Writer, provinces []rates.Province) {
	printer.Fprintf(w, "%-6s| %-26s| %-10s| %-10s| %s\n", "Code", "Name", "First $200", "Over $200", "Top Marginal")
	for _, p := range provinces {
		printer.Fprintf(w, "%-6s| %-26s| %-10s| %-10s| %s\n", p.Code, p.Name,
			format.Percent(p.First200Rate), format.Percent(p.Over200Rate), format.Percent(p.TopMarginalRate))
	}
	fed := rates.FederalRates()
	printer.Fprintf(w, "Federal: %s on the first $200, %s above, %s above for income over %s\n",
		format.Percent(fed.First200Rate), format.Percent(fed.Over200Rate),
		format.Percent(fed.HighIncomeOver200Rate), format.WholeCurrency(fed.HighIncomeThreshold))
}

var csvHeader = []string{
	"gift type", "province", "amount", "income", "adjusted cost base",
	"federal credit", "provincial credit", "total credit",
	"capital gains tax saved", "total savings", "net cost",
}

// CsvFormat writes one row per estimate in comma-separated value format.
func CsvFormat(w io.Writer, results ...estimate.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Input.GiftType.String(),
			r.Input.Province,
			amount(r.Input.Amount),
			amount(r.Input.Income),
			amount(r.Input.AdjustedCostBase),
			amount(r.Credit.Federal),
			amount(r.Credit.Provincial),
			amount(r.Credit.Total),
			amount(r.CapitalGainsTaxSaved),
			amount(r.TotalSavings),
			amount(r.NetCost),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvProvinces writes the rate table in comma-separated value format.
func CsvProvinces(w io.Writer, provinces []rates.Province) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "name", "first 200 rate", "over 200 rate", "top marginal rate"}); err != nil {
		return err
	}
	for _, p := range provinces {
		row := []string{p.Code, p.Name, rate(p.First200Rate), rate(p.Over200Rate), rate(p.TopMarginalRate)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func credit(v float64) string {
	return "-" + format.Currency(v)
}

func amount(v float64) string {
	return format.Fixed(v)
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
