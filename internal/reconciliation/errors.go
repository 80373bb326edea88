package reconciliation

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadNotFound is returned when a fix names a key that is not stashed.
	ErrPayloadNotFound = errors.New("no failed invoice stored under key")

	// ErrFixNotAllowed is returned when a fix does not apply to the stage the invoice failed at.
	ErrFixNotAllowed = errors.New("fix not available for this failure")

	// ErrEmptyPO is returned by FixPO for a blank PO.
	ErrEmptyPO = errors.New("please enter a PO")

	// ErrNoSplitEntries is returned when no "Supplier = trays" line could be read.
	ErrNoSplitEntries = errors.New("please enter at least one valid `Supplier = trays` line")

	// ErrTrayCountRequired is returned by FixSplit when neither the invoice nor the caller gives a tray count.
	ErrTrayCountRequired = errors.New("the invoice tray count was not detected; enter the total tray count")
)

// TrayOverrideError is returned when a tray override disagrees with the consignment total.
type TrayOverrideError struct {
	Override    int64
	Consignment int64
}

func (e *TrayOverrideError) Error() string {
	return fmt.Sprintf("Tray mismatch with Consignment: override %d vs %d", e.Override, e.Consignment)
}

// SplitSumError is returned when manual split entries do not add up to the invoice's trays.
type SplitSumError struct {
	Entered int64
	PDF     int64
}

func (e *SplitSumError) Error() string {
	return fmt.Sprintf("Sum of entered trays (%d) must equal PDF tray count (%d).", e.Entered, e.PDF)
}
