package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser layouts understood by the invoice package.
const (
	LayoutValleyFresh = "valleyfresh"
	LayoutDeLuca      = "deluca"
	LayoutBache       = "bache"
)

// Vendor is one invoice issuer the tool knows how to read.
type Vendor struct {
	// Name is the vendor identity used throughout processing and in stash keys.
	Name string `yaml:"name"`

	// ABN is the tax registration number printed on the vendor's invoices, digits only.
	ABN string `yaml:"abn"`

	// CardName is the supplier card name written to the accounting import.
	// Defaults to Name.
	CardName string `yaml:"card_name"`

	// Layout selects the field parser.
	Layout string `yaml:"layout"`

	// Consignors lists the consignment-summary consignors shipped under this vendor.
	Consignors []string `yaml:"consignors"`
}

// Columns names the spreadsheet headers read by the resolver and the account mapping.
type Columns struct {
	Consignor string `yaml:"consignor"`
	Supplier  string `yaml:"supplier"`
	PO        string `yaml:"po"`
	Trays     string `yaml:"trays"`
	Crop      string `yaml:"crop"`

	MappingSupplier  string `yaml:"mapping_supplier"`
	LogisticsAccount string `yaml:"logistics_account"`
	FreightAccount   string `yaml:"freight_account"`
	JobCode          string `yaml:"job_code"`
}

// Registry is the reference data that ties vendors, spreadsheets and ledger output together.
type Registry struct {
	Vendors []Vendor `yaml:"vendors"`
	Columns Columns  `yaml:"columns"`

	// Crop restricts consignment rows (case-insensitive substring).
	Crop string `yaml:"crop"`

	// PerTrayRate converts a logistics charge into the tray count quoted in line descriptions.
	PerTrayRate float64 `yaml:"per_tray_rate"`

	// TaxCode is written on every allocation line.
	TaxCode string `yaml:"tax_code"`
}

// DefaultRegistry returns the built-in vendor registry.
func DefaultRegistry() *Registry {
	r := &Registry{
		Vendors: []Vendor{
			{
				Name:       "De Luca Banana Marketing",
				ABN:        "45105141553",
				CardName:   "De Luca Banana Marketing Pty Ltd",
				Layout:     LayoutDeLuca,
				Consignors: []string{"Valley Fresh Brisbane"},
			},
			{
				Name:       "Bache Bros Pty Ltd",
				ABN:        "29612732064",
				Layout:     LayoutBache,
				Consignors: []string{"Bache Bros Warehouse"},
			},
			{
				Name:       "FRESHMAX NATIONAL PTY LTD",
				ABN:        "61050197343",
				Layout:     LayoutValleyFresh,
				Consignors: []string{"Valley Fresh Sydney", "Valley Fresh Melbourne"},
			},
		},
	}
	applyRegistryDefaults(r)
	return r
}

// LoadRegistry reads a YAML registry. An empty path returns DefaultRegistry.
// Sections missing from the file keep their built-in values.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor registry %s: %w", path, err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse vendor registry %s: %w", path, err)
	}
	if len(r.Vendors) == 0 {
		r.Vendors = DefaultRegistry().Vendors
	}

	applyRegistryDefaults(&r)

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid vendor registry %s: %w", path, err)
	}
	return &r, nil
}

func applyRegistryDefaults(r *Registry) {
	c := &r.Columns
	setDefault(&c.Consignor, "Consignor")
	setDefault(&c.Supplier, "Supplier")
	setDefault(&c.PO, "TBC Ref. (Po No)")
	setDefault(&c.Trays, "Trays")
	setDefault(&c.Crop, "Crop")
	setDefault(&c.MappingSupplier, "Supplier")
	setDefault(&c.LogisticsAccount, "Logistics Account")
	setDefault(&c.FreightAccount, "Freight Account")
	setDefault(&c.JobCode, "Job Code")

	setDefault(&r.Crop, "Blueberry")
	setDefault(&r.TaxCode, "GST")
	if r.PerTrayRate == 0 {
		r.PerTrayRate = 0.85
	}

	for i := range r.Vendors {
		v := &r.Vendors[i]
		v.ABN = digitsOnly(v.ABN)
		setDefault(&v.CardName, v.Name)
	}
}

func (r *Registry) validate() error {
	seen := make(map[string]bool)
	for i, v := range r.Vendors {
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("vendor %d: name is required", i+1)
		}
		if v.ABN == "" {
			return fmt.Errorf("vendor %q: abn is required", v.Name)
		}
		if seen[v.ABN] {
			return fmt.Errorf("vendor %q: abn %s is listed twice", v.Name, v.ABN)
		}
		seen[v.ABN] = true
		switch v.Layout {
		case LayoutValleyFresh, LayoutDeLuca, LayoutBache:
		default:
			return fmt.Errorf("vendor %q: unknown layout %q", v.Name, v.Layout)
		}
	}
	if r.PerTrayRate <= 0 {
		return fmt.Errorf("per_tray_rate must be positive")
	}
	return nil
}

// VendorByName looks up a vendor by its registered name.
func (r *Registry) VendorByName(name string) (Vendor, bool) {
	for _, v := range r.Vendors {
		if v.Name == name {
			return v, true
		}
	}
	return Vendor{}, false
}

// VendorByABN looks up a vendor by registration number; non-digits in abn are ignored.
func (r *Registry) VendorByABN(abn string) (Vendor, bool) {
	abn = digitsOnly(abn)
	for _, v := range r.Vendors {
		if v.ABN == abn {
			return v, true
		}
	}
	return Vendor{}, false
}

// CardName returns the import card name for a vendor, falling back to the name itself.
func (r *Registry) CardName(vendor string) string {
	if v, ok := r.VendorByName(vendor); ok {
		return v.CardName
	}
	return vendor
}

// Consignors returns the consignor allow-list for a vendor.
func (r *Registry) Consignors(vendor string) []string {
	if v, ok := r.VendorByName(vendor); ok {
		return v.Consignors
	}
	return nil
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
