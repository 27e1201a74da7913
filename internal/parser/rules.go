package parser

import (
	"regexp"
	"strings"
)

type match struct {
	sender    string
	bank      string
	amount    string
	reference string
}

// rule extracts fields through the named groups sender, bank, amount and ref.
// ref is mandatory for a rule to match.
type rule struct {
	name string
	re   *regexp.Regexp
}

func (r rule) apply(body string) (match, bool) {
	sub := r.re.FindStringSubmatch(body)
	if sub == nil {
		return match{}, false
	}
	var m match
	for i, group := range r.re.SubexpNames() {
		v := strings.TrimSpace(sub[i])
		if v == "" {
			// alternatives may reuse a group name; keep the branch that matched
			continue
		}
		switch group {
		case "sender":
			m.sender = collapseSpaces(v)
		case "bank":
			m.bank = collapseSpaces(v)
		case "amount":
			m.amount = v
		case "ref":
			m.reference = v
		}
	}
	if m.reference == "" {
		return match{}, false
	}
	return m, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type format struct {
	kind  Kind
	bank  string
	rules []rule
}

// operationExpr accepts operación with and without the accent; app versions differ.
// fromExpr skips a leading "parte de" so it never ends up in the sender.
const (
	amountExpr    = `Bs\.?\s*(?P<amount>\d[\d.,]*)`
	refExpr       = `\bRef(?:erencia)?\.?\s*(?:N(?:ro|°|º|o)\.?\s*)?:?\s*(?P<ref>\d+)`
	operationExpr = `operaci[oó]n\s*(?:N(?:ro|°|º|o)\.?\s*)?:?\s*(?P<ref>\d+)`
	fromExpr      = `\bde\s+(?:parte\s+de\s+)?`
	nameExpr      = `(?P<sender>[^\d\s][^\n]*?)`
	phoneExpr     = `(?P<sender>(?:\+?58|0)\d{3}-?\d{7})`
)

// Rules for a title are listed in priority order. Name-bearing rules come
// before phone-only rules, which come before the bare reference rule.
var formats = map[string]format{
	"PagomóvilBDV recibido": {
		kind: KindPagoMovil,
		bank: "BDV",
		rules: []rule{
			{
				name: "pago_movil_nombre",
				re:   regexp.MustCompile(`(?is)` + fromExpr + nameExpr + `\s+por\s+` + amountExpr + `.*?(?:` + operationExpr + `|` + refExpr + `)`),
			},
			{
				name: "pago_movil_telefono",
				re:   regexp.MustCompile(`(?is)\bdel?\s+(?:tlf\.?\s*|tel[eé]fono\s*)?` + phoneExpr + `\s+por\s+` + amountExpr + `.*?(?:` + operationExpr + `|` + refExpr + `)`),
			},
			{
				name: "pago_movil_referencia",
				re:   regexp.MustCompile(`(?is)` + amountExpr + `.*?(?:` + operationExpr + `|` + refExpr + `)`),
			},
		},
	},
	"Transferencia interbancaria recibida": {
		kind: KindInterbancaria,
		bank: "INTERBANCARIA",
		rules: []rule{
			{
				name: "interbancaria_nombre_banco",
				re:   regexp.MustCompile(`(?is)` + fromExpr + nameExpr + `\s+desde\s+(?:el\s+)?(?:banco\s+)?(?P<bank>[^\n]+?)\s+por\s+` + amountExpr + `.*?` + refExpr),
			},
			{
				name: "interbancaria_nombre",
				re:   regexp.MustCompile(`(?is)` + fromExpr + nameExpr + `\s+por\s+` + amountExpr + `.*?` + refExpr),
			},
			{
				name: "interbancaria_referencia",
				re:   regexp.MustCompile(`(?is)` + amountExpr + `.*?` + refExpr),
			},
		},
	},
	"Transferencia BDV recibida": {
		kind: KindInterna,
		bank: "BDV",
		rules: []rule{
			{
				name: "interna_nombre",
				re:   regexp.MustCompile(`(?is)transferencia\s+` + fromExpr + nameExpr + `\s+por\s+` + amountExpr + `.*?` + refExpr),
			},
			{
				name: "interna_referencia",
				re:   regexp.MustCompile(`(?is)` + amountExpr + `.*?` + refExpr),
			},
		},
	},
}
