package allocation

import (
	"errors"
	"strings"
)

// ErrNoChargeLines is returned when an invoice produced no allocation line.
var ErrNoChargeLines = errors.New("no charge lines found (Logistics/Freight) on invoice")

// UnmappedGrowersError lists split members with no account mapping.
type UnmappedGrowersError struct {
	Growers []string
}

func (e *UnmappedGrowersError) Error() string {
	return "no account mapping found for growers: " + strings.Join(e.Growers, ", ")
}
