// Package parser turns the title and body of a forwarded banking push
// notification into a structured payment. Parsing never fails: text that does
// not match a known format yields a Result with Recognized set to false.
package parser

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wifi-access-backend/pkg/helpers"
)

type Kind string

const (
	KindPagoMovil     Kind = "PAGO_MOVIL"
	KindInterbancaria Kind = "TRANSFERENCIA_INTERBANCARIA"
	KindInterna       Kind = "TRANSFERENCIA_INTERNA"
	KindUnknown       Kind = "UNKNOWN"
)

// Result is immutable once returned. Reference and Sender are nil when the
// notification was not recognized or the matching rule does not capture them.
// AmountAmbiguous is set when the amount text used a separator layout that
// cannot be read safely; Amount is then zero.
type Result struct {
	Kind            Kind            `json:"type" yaml:"type"`
	Bank            string          `json:"bank" yaml:"bank"`
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	Reference       *string         `json:"reference" yaml:"reference"`
	Sender          *string         `json:"sender" yaml:"sender"`
	Recognized      bool            `json:"recognized" yaml:"recognized"`
	AmountAmbiguous bool            `json:"amountAmbiguous,omitempty" yaml:"amountAmbiguous,omitempty"`
	Rule            string          `json:"rule,omitempty" yaml:"rule,omitempty"`
}

func unrecognized() Result {
	return Result{Kind: KindUnknown, Amount: decimal.Zero}
}

// Parse matches the trimmed title exactly against the known notification
// titles and tries that title's body rules in priority order.
func Parse(title, body string) Result {
	f, ok := formats[strings.TrimSpace(title)]
	if !ok {
		return unrecognized()
	}
	for _, r := range f.rules {
		m, ok := r.apply(body)
		if !ok {
			continue
		}
		return f.result(r.name, m)
	}
	return unrecognized()
}

func (f format) result(rule string, m match) Result {
	amount, ambiguous := NormalizeAmount(m.amount)
	res := Result{
		Kind:            f.kind,
		Bank:            f.bank,
		Amount:          amount,
		Reference:       helpers.Ptr(m.reference),
		Recognized:      true,
		AmountAmbiguous: ambiguous,
		Rule:            rule,
	}
	if m.bank != "" {
		res.Bank = strings.ToUpper(m.bank)
	}
	if m.sender != "" {
		res.Sender = helpers.Ptr(m.sender)
	}
	return res
}

// KnownTitles lists the notification titles the parser recognizes.
func KnownTitles() []string {
	titles := make([]string, 0, len(formats))
	for t := range formats {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}
