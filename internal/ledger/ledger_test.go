package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvribeiro/zapgastos/internal/extract"
	"github.com/mvribeiro/zapgastos/internal/logger"
)

func TestFormatSignedAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		kind   string
		want   string
	}{
		{"expense is negative", 12.5, extract.KindExpense, "-12,50"},
		{"income is positive", 12.5, extract.KindIncome, "12,50"},
		{"zero expense", 0, extract.KindExpense, "0,00"},
		{"rounds to two places", 10.005, extract.KindIncome, "10,01"},
		{"whole number", 50, extract.KindExpense, "-50,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSignedAmount(tt.amount, tt.kind)
			if got != tt.want {
				t.Errorf("FormatSignedAmount(%v, %s) = %q, want %q", tt.amount, tt.kind, got, tt.want)
			}
		})
	}
}

func TestBuildRow(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	exp := extract.Expense{
		Amount:   50,
		Category: "Lazer",
		Note:     "Pizza",
		Payment:  "Credito",
		Kind:     extract.KindExpense,
	}

	row := BuildRow(now, exp, "Pizza 50 reais no crédito")

	if row.Timestamp != "2025-03-14 09:26:53" {
		t.Errorf("Timestamp = %q", row.Timestamp)
	}
	if row.SignedAmount != "-50,00" {
		t.Errorf("SignedAmount = %q", row.SignedAmount)
	}

	vals := row.values()
	want := []interface{}{
		"2025-03-14 09:26:53", "-50,00", "Lazer", "Pizza", "Credito", "expense", "Pizza 50 reais no crédito",
	}
	if len(vals) != len(want) {
		t.Fatalf("values() has %d columns, want %d", len(vals), len(want))
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, vals[i], want[i])
		}
	}
}

// recordingAppender captures appended rows for fan-out tests.
type recordingAppender struct {
	rows []Row
	err  error
}

func (a *recordingAppender) Append(ctx context.Context, row Row) error {
	a.rows = append(a.rows, row)
	return a.err
}

func TestFanout(t *testing.T) {
	row := Row{Category: "Mercado", SignedAmount: "-10,00"}
	log := logger.NewWithWriter(&nopWriter{})

	t.Run("both appended, primary error reported", func(t *testing.T) {
		primary := &recordingAppender{err: errors.New("quota exceeded")}
		mirror := &recordingAppender{}

		err := Fanout(primary, mirror, log).Append(context.Background(), row)
		if err == nil {
			t.Error("expected primary error to surface")
		}
		if len(primary.rows) != 1 || len(mirror.rows) != 1 {
			t.Errorf("appends: primary %d, mirror %d, want 1 and 1", len(primary.rows), len(mirror.rows))
		}
	})

	t.Run("mirror error swallowed", func(t *testing.T) {
		primary := &recordingAppender{}
		mirror := &recordingAppender{err: errors.New("dataset missing")}

		if err := Fanout(primary, mirror, log).Append(context.Background(), row); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
