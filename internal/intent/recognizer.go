// Package intent classifies free-text operator questions into the closed set
// of query types the engine can execute.
package intent

import (
	"strings"

	"report-query-engine/internal/report"
)

// Query type identifiers.
const (
	TypeSumLineTotal         = "SUM_LINE_TOTAL"
	TypeItemLineTotals       = "ITEM_LINE_TOTALS"
	TypeOrderAttributes      = "ORDER_ATTRIBUTES"
	TypeStoreDetails         = "STORE_DETAILS"
	TypeMTLStatus            = "MTL_STATUS"
	TypeInternalStatus       = "INTERNAL_STATUS"
	TypeInternalFailedReason = "INTERNAL_FAILED_REASON"
	TypeOrderTotalByTxnType  = "ORDER_TOTAL_BY_TXN_TYPE"
	TypePaymentDetails       = "PAYMENT_DETAILS"
	TypeUnknown              = "UNKNOWN"
)

// Handler names, the registry's vocabulary.
const (
	HandlerSumLineTotals     = "sumLineTotals"
	HandlerItemLineTotals    = "getItemLineTotals"
	HandlerOrderAttributes   = "getOrderAttributes"
	HandlerStoreDetails      = "getStoreDetails"
	HandlerMTLStatus         = "getMTLStatus"
	HandlerInternalStatus    = "getInternalStatus"
	HandlerInternalFailed    = "getInternalFailedReason"
	HandlerOrderTotalsByType = "getOrderTotalByTransactionType"
	HandlerPaymentDetails    = "getPaymentDetails"
	HandlerFallback          = "fallbackQuery"
)

// Classification is the recognizer's verdict for one query.
type Classification struct {
	Type        string  `json:"type"`
	Handler     string  `json:"handler"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty"`
	Source      string  `json:"source,omitempty"`
}

type pattern struct {
	queryType   string
	handler     string
	description string
	keywords    []string
}

// queryPatterns is evaluated in declaration order; the first pattern with any
// keyword hit wins. Order is part of the contract.
var queryPatterns = []pattern{
	{TypeSumLineTotal, HandlerSumLineTotals, "Sum of all line totals",
		[]string{"line total", "sum", "add", "total of"}},
	{TypeItemLineTotals, HandlerItemLineTotals, "Get itemId, primeLineNo, lineTotal, tax, discount for all line items",
		[]string{"item details", "line totals", "item and line total"}},
	{TypeOrderAttributes, HandlerOrderAttributes, "Get order attribute fields including invoice numbers, dates, and totals",
		[]string{"order attributes", "original invoice", "master invoice", "business date", "sales date"}},
	{TypeStoreDetails, HandlerStoreDetails, "Get store details including location number and zippedInStore",
		[]string{"store details", "store info", "location number", "zippedinstore"}},
	{TypeMTLStatus, HandlerMTLStatus, "Get MTL transaction status information",
		[]string{"mtl status", "transaction status", "status"}},
	{TypeInternalStatus, HandlerInternalStatus, "Get internal status information",
		[]string{"internal status", "internal state"}},
	{TypeInternalFailedReason, HandlerInternalFailed, "Get internal failed reason information",
		[]string{"internal failed reason", "failed reason", "failure reason"}},
	{TypeOrderTotalByTxnType, HandlerOrderTotalsByType, "Get grandTotal by transaction type",
		[]string{"order total", "grand total", "total amount", "create order", "change order", "transaction type"}},
	{TypePaymentDetails, HandlerPaymentDetails, "Get payment details including credit card info, payment status, and request amount",
		[]string{"payment details", "payment", "credit card", "payment status", "payment method", "payment info", "card details"}},
}

var paymentKeywords = []string{
	"payment details", "payment", "credit card", "payment status",
	"payment method", "payment info", "card details",
}

var orderTotalKeywords = []string{"order total", "grand total", "total amount"}

// knownHandlers is the closed vocabulary a classification may carry.
var knownHandlers = map[string]string{
	HandlerSumLineTotals:     TypeSumLineTotal,
	HandlerItemLineTotals:    TypeItemLineTotals,
	HandlerOrderAttributes:   TypeOrderAttributes,
	HandlerStoreDetails:      TypeStoreDetails,
	HandlerMTLStatus:         TypeMTLStatus,
	HandlerInternalStatus:    TypeInternalStatus,
	HandlerInternalFailed:    TypeInternalFailedReason,
	HandlerOrderTotalsByType: TypeOrderTotalByTxnType,
	HandlerPaymentDetails:    TypePaymentDetails,
	HandlerFallback:          TypeUnknown,
}

// KnownHandler reports whether a handler name belongs to the closed set.
func KnownHandler(name string) bool {
	_, ok := knownHandlers[name]
	return ok
}

// KnownTypes returns every query type identifier, fallback included.
func KnownTypes() []string {
	out := make([]string, 0, len(queryPatterns)+1)
	for _, p := range queryPatterns {
		out = append(out, p.queryType)
	}
	return append(out, TypeUnknown)
}

// KnownHandlers returns every handler name in the closed set.
func KnownHandlers() []string {
	out := make([]string, 0, len(queryPatterns)+1)
	for _, p := range queryPatterns {
		out = append(out, p.handler)
	}
	return append(out, HandlerFallback)
}

// Recognize classifies a query with keyword rules alone. It never fails: an
// unmatched query maps to the fallback handler with zero confidence.
func Recognize(query string) Classification {
	normalized := strings.ToLower(query)

	// Payment wins outright regardless of other keyword hits.
	for _, kw := range paymentKeywords {
		if strings.Contains(normalized, kw) {
			return Classification{
				Type:        TypePaymentDetails,
				Handler:     HandlerPaymentDetails,
				Confidence:  1.0,
				Description: "Get payment details filtered by transaction type if applicable",
				Source:      "rules",
			}
		}
	}

	// Order totals win next, either by keyword or by naming a transaction type.
	hasOrderTotal := false
	for _, kw := range orderTotalKeywords {
		if strings.Contains(normalized, kw) {
			hasOrderTotal = true
			break
		}
	}
	if hasOrderTotal || report.MentionsKnownType(query) {
		return Classification{
			Type:        TypeOrderTotalByTxnType,
			Handler:     HandlerOrderTotalsByType,
			Confidence:  1.0,
			Description: "Get grandTotal by transaction type",
			Source:      "rules",
		}
	}

	for _, p := range queryPatterns {
		matched := 0
		for _, kw := range p.keywords {
			if strings.Contains(normalized, kw) {
				matched++
			}
		}
		if matched > 0 {
			return Classification{
				Type:        p.queryType,
				Handler:     p.handler,
				Confidence:  float64(matched) / float64(len(p.keywords)),
				Description: p.description,
				Source:      "rules",
			}
		}
	}

	return Classification{
		Type:        TypeUnknown,
		Handler:     HandlerFallback,
		Confidence:  0,
		Description: "Unknown query type - using AI fallback",
		Source:      "rules",
	}
}
