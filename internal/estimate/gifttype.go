package estimate

import (
	"fmt"
	"strings"

	"github.com/iwvelando/givewise/pkg/constants"
)

// GiftType selects how a donation is made.
type GiftType int

const (
	// Cash is a donation of money.
	Cash GiftType = iota
	// Securities is an in-kind donation of publicly listed securities.
	Securities
)

// ParseGiftType parses "cash" or "securities" (case-insensitive). An empty
// string is Cash.
func ParseGiftType(s string) (GiftType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", constants.GiftTypeCash:
		return Cash, nil
	case constants.GiftTypeSecurities:
		return Securities, nil
	default:
		return Cash, fmt.Errorf("expected gift type of %s or %s, got %s",
			constants.GiftTypeCash, constants.GiftTypeSecurities, s)
	}
}

func (g GiftType) String() string {
	switch g {
	case Cash:
		return constants.GiftTypeCash
	case Securities:
		return constants.GiftTypeSecurities
	default:
		return fmt.Sprintf("GiftType(%d)", int(g))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g GiftType) MarshalText() ([]byte, error) {
	if g != Cash && g != Securities {
		return nil, fmt.Errorf("unknown gift type %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GiftType) UnmarshalText(text []byte) error {
	parsed, err := ParseGiftType(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
