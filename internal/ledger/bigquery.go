package ledger

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

const mirrorTable = "ledger_rows"

// mirrorRow is the BigQuery schema for one mirrored ledger line.
type mirrorRow struct {
	EntryDate    civil.Date `bigquery:"entry_date"`
	RecordedTS   time.Time  `bigquery:"recorded_ts"`
	SignedAmount string     `bigquery:"signed_amount"`
	Category     string     `bigquery:"category"`
	Note         string     `bigquery:"note"`
	Payment      string     `bigquery:"payment_method"`
	Kind         string     `bigquery:"kind"`
	RawText      string     `bigquery:"raw_text"`
}

// BigQueryMirror streams ledger rows into <dataset>.ledger_rows so the
// spreadsheet can be analyzed with SQL. Purely additive: the spreadsheet
// stays the source of truth.
type BigQueryMirror struct {
	projectID string
	dataset   string
	log       zerolog.Logger
}

// NewBigQueryMirror creates a mirror for the given project and dataset.
func NewBigQueryMirror(projectID, dataset string, log zerolog.Logger) *BigQueryMirror {
	return &BigQueryMirror{projectID: projectID, dataset: dataset, log: log}
}

// Append streams one row. The client is built per call, matching the rest
// of the per-request resource model.
func (m *BigQueryMirror) Append(ctx context.Context, row Row) error {
	client, err := bigquery.NewClient(ctx, m.projectID)
	if err != nil {
		return fmt.Errorf("Append: bigquery client: %w", err)
	}
	defer client.Close()

	now := time.Now()
	rec := &mirrorRow{
		EntryDate:    civil.DateOf(now),
		RecordedTS:   now,
		SignedAmount: row.SignedAmount,
		Category:     row.Category,
		Note:         row.Note,
		Payment:      row.Payment,
		Kind:         row.Kind,
		RawText:      row.RawText,
	}

	inserter := client.Dataset(m.dataset).Table(mirrorTable).Inserter()
	if err := inserter.Put(ctx, rec); err != nil {
		return fmt.Errorf("Append: inserting row: %w", err)
	}
	return nil
}

// Fanout appends to primary and then, best-effort, to mirror. Only the
// primary append's error is reported; a mirror failure is logged and
// dropped.
func Fanout(primary, mirror Appender, log zerolog.Logger) Appender {
	return &fanout{primary: primary, mirror: mirror, log: log}
}

type fanout struct {
	primary Appender
	mirror  Appender
	log     zerolog.Logger
}

func (f *fanout) Append(ctx context.Context, row Row) error {
	err := f.primary.Append(ctx, row)

	if mirrorErr := f.mirror.Append(ctx, row); mirrorErr != nil {
		f.log.Error().Err(mirrorErr).Msg("ledger mirror append failed")
	}

	return err
}
