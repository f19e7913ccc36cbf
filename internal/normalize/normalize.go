// Package normalize cleans up the category and payment-method labels the
// model returns before they reach the ledger. Labels are compared and
// stored accent-free and title-cased so "crédito", "CREDITO" and "Credito"
// all land as the same value.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLabel is used when the model returns an empty or missing label.
const DefaultLabel = "Outros"

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	titleCaser   = cases.Title(language.BrazilianPortuguese)
)

// Label folds accents away, trims and title-cases s. An empty result maps
// to DefaultLabel. Idempotent: Label(Label(s)) == Label(s).
func Label(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	folded = strings.TrimSpace(folded)
	if folded == "" {
		return DefaultLabel
	}
	return titleCaser.String(folded)
}
