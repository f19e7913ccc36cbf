// Package extract turns a free-form WhatsApp message into structured
// expense fields using Gemini. Extraction is best-effort: the model output
// is trusted structurally, never semantically, and every failure path
// degrades to a usable default instead of an error.
package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mvribeiro/zapgastos/internal/normalize"
)

// Expense is the structured result of one extraction. All fields are
// always populated.
type Expense struct {
	Amount   float64
	Category string
	Note     string
	Payment  string
	Kind     string // "expense" or "income"
}

const (
	KindExpense = "expense"
	KindIncome  = "income"

	// DefaultCategory is used when extraction fails outright; field-level
	// gaps fall back to normalize.DefaultLabel instead.
	DefaultCategory = "Geral"
)

// Generator produces raw model text for a prompt. The Gemini client
// implements it; tests substitute a canned one.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor drives the prompt / parse / coerce cycle.
type Extractor struct {
	gen Generator
	log zerolog.Logger
}

// New creates an Extractor on top of the given generator.
func New(gen Generator, log zerolog.Logger) *Extractor {
	return &Extractor{gen: gen, log: log}
}

// Extract is total: it always returns a complete Expense. When the model
// call fails or returns unparsable text, the defaults carry the original
// message as the note so nothing is lost.
func (e *Extractor) Extract(ctx context.Context, text string) Expense {
	fallback := Expense{
		Amount:   0,
		Category: DefaultCategory,
		Note:     text,
		Payment:  normalize.DefaultLabel,
		Kind:     KindExpense,
	}

	raw, err := e.gen.Generate(ctx, buildPrompt(text))
	if err != nil {
		e.log.Error().Err(err).Msg("extract: model call failed, using defaults")
		return fallback
	}

	obj, ok := parseModelJSON(raw)
	if !ok {
		e.log.Warn().Str("raw", raw).Msg("extract: no JSON object in model output, using defaults")
		return fallback
	}

	return coerce(obj, text)
}

func buildPrompt(text string) string {
	return "You are an expense extraction assistant for a personal finance bot.\n" +
		"The user writes short messages in Portuguese about money they spent or received.\n\n" +
		"Extract the transaction from the message below and output STRICT JSON only\n" +
		"(no comments, no Markdown, no extra text) with exactly these keys:\n" +
		"- \"amount\": number, the transaction value\n" +
		"- \"category\": string, e.g. \"Mercado\", \"Transporte\", \"Lazer\"\n" +
		"- \"note\": string, a short description of the transaction\n" +
		"- \"payment\": string, e.g. \"Credito\", \"Debito\", \"Pix\", \"Dinheiro\"\n" +
		"- \"type\": string, \"expense\" or \"income\"\n\n" +
		"If a field cannot be determined, use an empty string (or 0 for amount).\n" +
		"Output must begin with \"{\" and end with \"}\".\n\n" +
		"Message: " + text
}

// parseModelJSON slices the response between the first "{" and the last
// "}" before unmarshalling, tolerating code fences and chatter around the
// object.
func parseModelJSON(raw string) (map[string]interface{}, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func coerce(obj map[string]interface{}, originalText string) Expense {
	exp := Expense{
		Amount:   coerceAmount(obj["amount"]),
		Category: normalize.Label(coerceString(obj["category"])),
		Note:     coerceString(obj["note"]),
		Payment:  normalize.Label(coerceString(obj["payment"])),
		Kind:     KindExpense,
	}

	if exp.Note == "" {
		exp.Note = originalText
	}
	if kind := strings.ToLower(strings.TrimSpace(coerceString(obj["type"]))); kind == KindIncome {
		exp.Kind = KindIncome
	}
	return exp
}

// coerceAmount accepts a JSON number or a numeric string, tolerating a
// comma decimal separator. Anything else is 0.
func coerceAmount(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
