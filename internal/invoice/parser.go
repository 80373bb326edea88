package invoice

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"freightsplit/internal/config"
	"freightsplit/pkg/models"
)

// Parser reads one vendor's printed invoice layout.
type Parser interface {
	// Layout is the registry layout key the parser serves.
	Layout() string

	// Parse extracts fields from normalized text. Fields that cannot be found are
	// left empty (or zero); Parse never fails.
	Parse(text string) models.Invoice
}

var parsers = map[string]Parser{
	config.LayoutValleyFresh: valleyFreshParser{},
	config.LayoutDeLuca:      deLucaParser{},
	config.LayoutBache:       bacheParser{},
}

// ParserFor returns the parser for a layout key.
func ParserFor(layout string) (Parser, error) {
	p, ok := parsers[layout]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	return p, nil
}

// amount parses a numeric token as money. Tokens come from reNumber so they are
// always valid decimals.
func amount(token string) decimal.Decimal {
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// trayCount parses a numeric token and rounds it to a whole tray, ties to even.
func trayCount(token string) float64 {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return math.RoundToEven(f)
}

// fromEnd returns the n-th number counted from the end (1 = last).
func fromEnd(nums []string, n int) string {
	return nums[len(nums)-n]
}

// parseDate interprets printed date text with the given layouts.
func parseDate(text string, layouts ...string) time.Time {
	text = strings.TrimSpace(text)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}
