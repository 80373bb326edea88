package reconciliation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"freightsplit/internal/config"
	"freightsplit/internal/consignment"
	"freightsplit/internal/logger"
	"freightsplit/internal/mapping"
	"freightsplit/internal/sheets"
	"freightsplit/internal/workbook"
)

// TableSource reads a header-first range from a remote spreadsheet.
type TableSource interface {
	ReadTable(ctx context.Context, rangeSpec string) (*workbook.Table, error)
}

// SheetOpener connects to the spreadsheet at url.
type SheetOpener func(ctx context.Context, url string) (TableSource, error)

// OpenGoogleSheet is the SheetOpener backed by the Google Sheets API.
func OpenGoogleSheet(ctx context.Context, url string) (TableSource, error) {
	svc, err := sheets.NewSheetsService(ctx, url)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// DataReader loads the batch's reference data from .xlsx files or Google Sheets.
type DataReader struct {
	registry  *config.Registry
	openSheet SheetOpener
	log       zerolog.Logger
}

// NewDataReader creates a reader. Sources given as Google Sheets URLs are opened with openSheet.
func NewDataReader(registry *config.Registry, openSheet SheetOpener) *DataReader {
	return &DataReader{
		registry:  registry,
		openSheet: openSheet,
		log:       logger.WithComponent("reconciliation-reader"),
	}
}

// ReadConsignment loads the consignment summary. For a sheet URL, rangeSpec selects the range;
// for a file the first sheet is read.
func (dr *DataReader) ReadConsignment(ctx context.Context, source, rangeSpec string) (*consignment.Resolver, error) {
	const op = "ReadConsignment"

	dr.log.Info().Str("source", source).Msg("Reading consignment summary")

	table, err := dr.readTable(ctx, source, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := consignment.FromTable(table, dr.registry.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, row := range rows {
		if row.Trays == 0 && row.TraysRaw != "" {
			dr.log.Warn().
				Int("row", i+2).
				Str("trays", row.TraysRaw).
				Str("supplier", row.Supplier).
				Msg("Non-numeric tray count, treating as zero")
		}
	}

	resolver := consignment.NewResolver(rows, dr.registry)
	dr.log.Info().
		Int("total_rows", resolver.Len()).
		Str("sheet", table.Name).
		Msg("Consignment summary read successfully")

	return resolver, nil
}

// ReadMapping loads the grower account map.
func (dr *DataReader) ReadMapping(ctx context.Context, source, rangeSpec string) (*mapping.Table, error) {
	const op = "ReadMapping"

	dr.log.Info().Str("source", source).Msg("Reading account map")

	table, err := dr.readTable(ctx, source, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accounts, err := mapping.FromTable(table, dr.registry.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dr.log.Info().
		Int("total_rows", len(table.Rows)).
		Int("growers", accounts.Len()).
		Str("sheet", table.Name).
		Msg("Account map read successfully")

	return accounts, nil
}

func (dr *DataReader) readTable(ctx context.Context, source, rangeSpec string) (*workbook.Table, error) {
	if !sheets.IsSheetURL(source) {
		return workbook.LoadXLSX(source, "")
	}

	if dr.openSheet == nil {
		return nil, fmt.Errorf("no spreadsheet connection available for %s", source)
	}
	svc, err := dr.openSheet(ctx, source)
	if err != nil {
		return nil, err
	}
	return svc.ReadTable(ctx, rangeSpec)
}
