package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsLedger appends rows to a Google Sheet. It authenticates per call
// with the configured service-account file; there is no cached connection
// between webhook deliveries.
type SheetsLedger struct {
	spreadsheetID   string
	sheetName       string
	credentialsFile string
	opts            []option.ClientOption
	log             zerolog.Logger
}

// NewSheetsLedger creates a ledger for the given spreadsheet. sheetName is
// the preferred worksheet; when it does not exist the first worksheet is
// used instead. Extra client options are appended last, letting tests
// point the service at a local server.
func NewSheetsLedger(spreadsheetID, sheetName, credentialsFile string, log zerolog.Logger, opts ...option.ClientOption) *SheetsLedger {
	return &SheetsLedger{
		spreadsheetID:   spreadsheetID,
		sheetName:       sheetName,
		credentialsFile: credentialsFile,
		opts:            opts,
		log:             log,
	}
}

// Append writes one row at the bottom of the worksheet.
func (l *SheetsLedger) Append(ctx context.Context, row Row) error {
	srv, err := l.service(ctx)
	if err != nil {
		return fmt.Errorf("Append: create sheets service: %w", err)
	}

	title, err := l.resolveSheet(ctx, srv)
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{row.values()}}

	_, err = srv.Spreadsheets.Values.
		Append(l.spreadsheetID, sheetRange(title), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("Append: append values: %w", err)
	}

	l.log.Info().
		Str("sheet", title).
		Str("amount", row.SignedAmount).
		Str("category", row.Category).
		Msg("ledger row appended")
	return nil
}

func (l *SheetsLedger) service(ctx context.Context) (*sheets.Service, error) {
	var opts []option.ClientOption
	if l.credentialsFile != "" {
		opts = append(opts,
			option.WithCredentialsFile(l.credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}
	opts = append(opts, l.opts...)
	return sheets.NewService(ctx, opts...)
}

// resolveSheet returns the title of the worksheet to append to: the
// configured name when present, otherwise the first worksheet.
func (l *SheetsLedger) resolveSheet(ctx context.Context, srv *sheets.Service) (string, error) {
	meta, err := srv.Spreadsheets.Get(l.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("resolveSheet: get spreadsheet: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return "", fmt.Errorf("resolveSheet: spreadsheet %s has no sheets", l.spreadsheetID)
	}

	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == l.sheetName {
			return l.sheetName, nil
		}
	}

	first := meta.Sheets[0].Properties.Title
	l.log.Warn().
		Str("wanted", l.sheetName).
		Str("using", first).
		Msg("worksheet not found, falling back to first sheet")
	return first, nil
}

// sheetRange builds the A1 range for the target worksheet. Apostrophes in
// the title are doubled, per A1-notation quoting.
func sheetRange(title string) string {
	return fmt.Sprintf("'%s'!A:G", strings.ReplaceAll(title, "'", "''"))
}
