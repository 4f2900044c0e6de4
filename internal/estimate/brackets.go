package estimate

import (
	"sort"

	"github.com/iwvelando/givewise/pkg/format"
	"github.com/samber/lo"
)

// IncomeBracket is one choice of the income selector. Income is the value
// used for the calculation.
type IncomeBracket struct {
	Label  string  `json:"label"`
	Income float64 `json:"income"`
}

var brackets = map[float64]string{
	50000:  "$0 - $55k",
	100000: "$55k - $111k",
	150000: "$111k - $173k",
	200000: "$173k - $246k",
	300000: "$246k+",
}

var bracketOrder = []float64{50000, 100000, 150000, 200000, 300000}

// IncomeBrackets returns the income choices offered by the calculator form.
func IncomeBrackets() []IncomeBracket {
	return lo.Map(bracketOrder, func(income float64, _ int) IncomeBracket {
		return IncomeBracket{Label: brackets[income], Income: income}
	})
}

// IncomeBracketsWith returns the standard choices plus income as a choice of
// its own, in order, when it is not one of them.
func IncomeBracketsWith(income float64) []IncomeBracket {
	out := IncomeBrackets()
	if _, ok := brackets[income]; ok {
		return out
	}
	out = append(out, IncomeBracket{Label: format.WholeCurrency(income), Income: income})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Income < out[j].Income
	})
	return out
}
