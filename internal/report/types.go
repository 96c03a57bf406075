package report

import (
	"regexp"
	"strings"
)

// Canonical transaction types carried by the report.
const (
	TypeTransIn        = "TRANS_IN"
	TypeTransOut       = "TRANS_OUT"
	TypeRefundTransIn  = "REFUND_TRANS_IN"
	TypeRefundTransOut = "REFUND_TRANS_OUT"
	TypeChangeOrder    = "CHANGE_ORDER"
	TypeCreateOrder    = "CREATE_ORDER"
	TypeFulfilledSale  = "FULFILLED_SALE"
)

// KnownTransactionTypes lists every canonical type, in canonical order.
var KnownTransactionTypes = []string{
	TypeTransIn,
	TypeTransOut,
	TypeRefundTransIn,
	TypeRefundTransOut,
	TypeChangeOrder,
	TypeCreateOrder,
	TypeFulfilledSale,
}

// typeVariation binds a canonical type to the spellings users reach for.
// Order matters twice: entries are evaluated in declaration order, and
// ExtractTypes reports hits in this order.
type typeVariation struct {
	canonical string
	patterns  []*regexp.Regexp
}

var typeVariations = buildTypeVariations([]struct {
	canonical  string
	variations []string
}{
	{TypeCreateOrder, []string{"CREATE ORDER", "CREATE_ORDER", "CREATEORDER", "CREATE"}},
	{TypeChangeOrder, []string{"CHANGE ORDER", "CHANGE_ORDER", "CHANGEORDER", "CHANGE"}},
	{TypeTransIn, []string{"TRANS IN", "TRANS_IN", "TRANSIN", "TRANSACTION IN"}},
	{TypeTransOut, []string{"TRANS OUT", "TRANS_OUT", "TRANSOUT", "TRANSACTION OUT"}},
	{TypeRefundTransIn, []string{"REFUND TRANS IN", "REFUND_TRANS_IN", "REFUND IN"}},
	{TypeRefundTransOut, []string{"REFUND TRANS OUT", "REFUND_TRANS_OUT", "REFUND OUT"}},
	{TypeFulfilledSale, []string{"FULFILLED SALE", "FULFILLED_SALE", "FULFILLEDSALE"}},
})

func buildTypeVariations(entries []struct {
	canonical  string
	variations []string
}) []typeVariation {
	out := make([]typeVariation, 0, len(entries))
	for _, e := range entries {
		patterns := make([]*regexp.Regexp, 0, len(e.variations))
		for _, v := range e.variations {
			// Whole-word, case-insensitive: "CREATE" must not fire inside
			// "RECREATED".
			patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(v)+`\b`))
		}
		out = append(out, typeVariation{canonical: e.canonical, patterns: patterns})
	}
	return out
}

// ExtractTypes finds every canonical transaction type a query mentions,
// matching known spelling variations on whole words, case-insensitively.
func ExtractTypes(query string) []string {
	found := make([]string, 0, 2)
	seen := make(map[string]bool)

	for _, tv := range typeVariations {
		if seen[tv.canonical] {
			continue
		}
		for _, p := range tv.patterns {
			if p.MatchString(query) {
				seen[tv.canonical] = true
				found = append(found, tv.canonical)
				break
			}
		}
	}

	return found
}

// NormalizeType maps a raw value to its canonical transaction type, if any.
func NormalizeType(input string) (string, bool) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(input)), " ", "_")
	for _, t := range KnownTransactionTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// MentionsKnownType reports whether the query names a canonical type, either
// verbatim or with underscores spoken as spaces.
func MentionsKnownType(query string) bool {
	normalized := strings.ToLower(query)
	for _, t := range KnownTransactionTypes {
		lower := strings.ToLower(t)
		if strings.Contains(normalized, strings.ReplaceAll(lower, "_", " ")) ||
			strings.Contains(normalized, lower) {
			return true
		}
	}
	return false
}
