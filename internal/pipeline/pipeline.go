// Package pipeline orchestrates the handling of one inbound message:
// extract, append to the ledger, reply. Each stage's failure is explicit in
// the Result, but no failure stops the stages after it; every inbound text
// yields exactly one ledger attempt and one notification attempt.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvribeiro/zapgastos/internal/extract"
	"github.com/mvribeiro/zapgastos/internal/ledger"
	"github.com/mvribeiro/zapgastos/internal/notify"
)

// Incoming message providers.
const (
	ProviderMeta   = "meta"
	ProviderTwilio = "twilio"
)

// IncomingMessage is one text message delivered by a webhook call. It is
// discarded after processing; only the derived ledger row persists.
type IncomingMessage struct {
	Sender   string // phone identifier, transport prefix already stripped
	Text     string
	Provider string
}

// Result reports what happened at each stage.
type Result struct {
	MessageID    string
	Expense      extract.Expense
	LedgerErr    error // nil when the append succeeded
	Notification notify.Outcome
}

// Extractor is the extraction stage contract.
type Extractor interface {
	Extract(ctx context.Context, text string) extract.Expense
}

// Notifier is the reply stage contract.
type Notifier interface {
	Notify(ctx context.Context, recipient, body string) notify.Outcome
}

// Pipeline wires the three stages together.
type Pipeline struct {
	extractor Extractor
	ledger    ledger.Appender
	notifier  Notifier
	log       zerolog.Logger
}

// New creates a Pipeline.
func New(extractor Extractor, appender ledger.Appender, notifier Notifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		ledger:    appender,
		notifier:  notifier,
		log:       log,
	}
}

// Process runs one message through the pipeline start to finish.
func (p *Pipeline) Process(ctx context.Context, msg IncomingMessage) Result {
	messageID := uuid.NewString()

	p.log.Info().
		Str("message_id", messageID).
		Str("provider", msg.Provider).
		Str("sender", msg.Sender).
		Msg("processing message")

	// 1. Extract structured fields; degrades to defaults, never fails.
	exp := p.extractor.Extract(ctx, msg.Text)

	// 2. Append the ledger row. A failure is logged and the pipeline
	// continues so the sender still gets a reply.
	row := ledger.BuildRow(time.Now(), exp, msg.Text)
	ledgerErr := p.ledger.Append(ctx, row)
	if ledgerErr != nil {
		p.log.Error().
			Err(ledgerErr).
			Str("message_id", messageID).
			Msg("ledger append failed")
	}

	// 3. Confirm back to the sender.
	outcome := p.notifier.Notify(ctx, msg.Sender, confirmation(exp))

	p.log.Info().
		Str("message_id", messageID).
		Str("category", exp.Category).
		Str("amount", row.SignedAmount).
		Str("notified_via", outcome.Provider).
		Msg("message processed")

	return Result{
		MessageID:    messageID,
		Expense:      exp,
		LedgerErr:    ledgerErr,
		Notification: outcome,
	}
}

// confirmation builds the reply text for an extracted expense.
func confirmation(exp extract.Expense) string {
	amount := strings.ReplaceAll(fmt.Sprintf("%.2f", exp.Amount), ".", ",")
	if exp.Kind == extract.KindIncome {
		return fmt.Sprintf("Anotado! Entrada de R$ %s em %s via %s.", amount, exp.Category, exp.Payment)
	}
	return fmt.Sprintf("Anotado! Gasto de R$ %s em %s via %s.", amount, exp.Category, exp.Payment)
}
