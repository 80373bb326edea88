package invoice

import (
	"regexp"
	"strings"

	"freightsplit/internal/config"
)

// reVendorLabel finds a "VENDOR" label followed closely by an 11-digit ABN, which may be
// printed in groups (e.g. "61 050 197 343").
var reVendorLabel = regexp.MustCompile(`(?is)\bVENDOR\b.{0,80}?(\d{2}\s?\d{3}\s?\d{3}\s?\d{3})`)

// Identify returns the registered vendor that issued the document.
//
// The ABN printed next to a VENDOR label wins when it is registered. Otherwise every
// digit in the document is concatenated and the first registered ABN (in registry
// order) found as a substring is used.
func Identify(registry *config.Registry, text string) (config.Vendor, bool) {
	for _, m := range reVendorLabel.FindAllStringSubmatch(text, -1) {
		if v, ok := registry.VendorByABN(m[1]); ok {
			return v, true
		}
	}

	digits := reNonDigit.ReplaceAllString(text, "")
	for _, v := range registry.Vendors {
		if v.ABN != "" && strings.Contains(digits, v.ABN) {
			return v, true
		}
	}
	return config.Vendor{}, false
}
