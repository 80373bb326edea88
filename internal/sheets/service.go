package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"freightsplit/internal/logger"
	"freightsplit/internal/workbook"
	"freightsplit/pkg/models"
	"freightsplit/pkg/services"
)

var _ services.AllocationSink = (*Service)(nil)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// IsSheetURL reports whether s points at a Google spreadsheet rather than a local file.
func IsSheetURL(s string) bool {
	return strings.HasPrefix(s, "https://") && spreadsheetIDPattern.MatchString(s)
}

// NewSheetsService creates a new Google Sheets service
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// ReadRange reads values from a specified range in the spreadsheet
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	s.log.Debug().
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	s.log.Debug().
		Int("rows", len(resp.Values)).
		Str("range", rangeSpec).
		Msg("Successfully read range from spreadsheet")

	return resp.Values, nil
}

// ReadTable reads a range whose first row holds column headers.
func (s *Service) ReadTable(ctx context.Context, rangeSpec string) (*workbook.Table, error) {
	const op = "ReadTable"

	values, err := s.ReadRange(ctx, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	table, err := workbook.FromValues(rangeSpec, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return table, nil
}

// WriteAllocationLines appends import lines to the named sheet, creating it with a header row if needed.
func (s *Service) WriteAllocationLines(ctx context.Context, sheetName string, lines []models.AllocationLine) error {
	const op = "WriteAllocationLines"

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(lines)).
		Msg("Writing allocation lines to Google Sheet")

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	values := make([][]interface{}, 0, len(lines))
	for _, line := range lines {
		values = append(values, lineToValues(line))
	}

	_, err := s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetName+"!"+columnSpan(),
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote allocation lines to Google Sheet")

	return nil
}

func lineToValues(line models.AllocationLine) []interface{} {
	record := line.Record()
	values := make([]interface{}, len(record))
	for i, v := range record {
		values[i] = v
	}
	return values
}

// columnSpan is the A1 column range covering the import columns, e.g. "A:I".
func columnSpan() string {
	last := rune('A' + len(models.ImportColumns) - 1)
	return fmt.Sprintf("A:%c", last)
}

func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				}},
			},
		}

		resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	span := columnSpan()
	headerRange := fmt.Sprintf("%s!%s1:%s1", sheetName, span[:1], span[2:])
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		s.log.Info().Str("sheet", sheetName).Msg("Adding headers to sheet")

		header := make([]interface{}, len(models.ImportColumns))
		for i, h := range models.ImportColumns {
			header[i] = h
		}

		_, err = s.sheetsService.Spreadsheets.Values.Update(
			s.spreadsheetID,
			headerRange,
			&sheets.ValueRange{Values: [][]interface{}{header}},
		).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to add headers: %w", op, err)
		}

		if err := s.formatHeaders(ctx, sheetID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
		}
	}

	return nil
}

// formatHeaders makes the header row bold and resizes the import columns.
func (s *Service) formatHeaders(ctx context.Context, sheetID int64) error {
	const op = "formatHeaders"

	width := int64(len(models.ImportColumns))
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   width,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{
							Red:   0.9,
							Green: 0.9,
							Blue:  0.9,
						},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   width,
				},
			},
		},
	}

	batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}

	return nil
}
