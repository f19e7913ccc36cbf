// Package ledger persists one row per processed message to the household
// spreadsheet, with an optional best-effort BigQuery mirror.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mvribeiro/zapgastos/internal/extract"
)

// Row is one ledger line. Column order is fixed: timestamp, signed amount,
// category, note, payment method, kind, raw text (A:G).
type Row struct {
	Timestamp    string
	SignedAmount string
	Category     string
	Note         string
	Payment      string
	Kind         string
	RawText      string
}

// Appender writes one row to a ledger backend.
type Appender interface {
	Append(ctx context.Context, row Row) error
}

// BuildRow maps an extracted expense to the spreadsheet schema.
func BuildRow(now time.Time, exp extract.Expense, rawText string) Row {
	return Row{
		Timestamp:    now.Format("2006-01-02 15:04:05"),
		SignedAmount: FormatSignedAmount(exp.Amount, exp.Kind),
		Category:     exp.Category,
		Note:         exp.Note,
		Payment:      exp.Payment,
		Kind:         exp.Kind,
		RawText:      rawText,
	}
}

// FormatSignedAmount renders the amount with two decimal places and a
// comma separator, negated for expenses: (12.5, expense) -> "-12,50".
func FormatSignedAmount(amount float64, kind string) string {
	if kind == extract.KindExpense {
		amount = -amount
	}
	return strings.ReplaceAll(fmt.Sprintf("%.2f", amount), ".", ",")
}

// values returns the row in spreadsheet column order.
func (r Row) values() []interface{} {
	return []interface{}{
		r.Timestamp,
		r.SignedAmount,
		r.Category,
		r.Note,
		r.Payment,
		r.Kind,
		r.RawText,
	}
}
