package reconciliation

import (
	"fmt"
	"strings"
)

// Stage is a validation step. Stages run in declaration order and a failure at one
// stage stops the remaining ones.
type Stage int

const (
	StagePO Stage = iota + 1
	StageGrowers
	StagePDFTrays
	StageSheetTrays
	StageTrayMatch
	StageMapping
	StageCharges
)

var stageNames = map[Stage]string{
	StagePO:         "po",
	StageGrowers:    "growers",
	StagePDFTrays:   "pdf_trays",
	StageSheetTrays: "sheet_trays",
	StageTrayMatch:  "tray_match",
	StageMapping:    "mapping",
	StageCharges:    "charges",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	if _, ok := stageNames[s]; !ok {
		return nil, fmt.Errorf("unknown stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// FixKind is a manual correction path.
type FixKind string

const (
	FixKindPO    FixKind = "po"
	FixKindTrays FixKind = "trays"
	FixKindSplit FixKind = "split"
)

// AllowedFixes returns the corrections offered for a failure at stage s. Mapping and
// charge failures have none: the account map or the invoice itself must be corrected.
func AllowedFixes(s Stage) []FixKind {
	switch s {
	case StagePO:
		return []FixKind{FixKindPO}
	case StagePDFTrays:
		return []FixKind{FixKindTrays}
	case StageGrowers, StageSheetTrays:
		return []FixKind{FixKindSplit}
	case StageTrayMatch:
		return []FixKind{FixKindSplit, FixKindTrays}
	default:
		return nil
	}
}

func allows(s Stage, kind FixKind) bool {
	for _, k := range AllowedFixes(s) {
		if k == kind {
			return true
		}
	}
	return false
}

func fixList(s Stage) string {
	kinds := AllowedFixes(s)
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
