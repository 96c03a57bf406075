package queries

import (
	"context"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getOrderTotalByTransactionType(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypeOrderTotalByTxnType,
			Results:   []OrderTotalRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction data found in InfinityReportResponse"},
		}
	}

	requestedTypes := report.ExtractTypes(query)

	results := []OrderTotalRecord{}
	available := make([]string, 0, len(txns))
	var totalSum float64

	for _, txn := range txns {
		txnType := report.StringOr(txn, "", "transactionType")
		available = append(available, txnType)

		if len(requestedTypes) > 0 && !containsString(requestedTypes, txnType) {
			continue
		}

		rec := OrderTotalRecord{
			EventID:         report.StringOr(txn, "N/A", "eventId"),
			TransactionType: txnType,
			OrderNo:         report.StringOr(txn, "N/A", "orderNo"),
			GrandTotalRaw:   "Not Available",
		}

		details, ok := report.Details(txn)
		if ok {
			if n, ok := report.NumberAt(details, "totals", "grandTotal"); ok {
				rec.GrandTotal = n
			}
			if raw, ok := report.StringAt(details, "totals", "grandTotal"); ok {
				rec.GrandTotalRaw = raw
			}
		}

		totalSum += rec.GrandTotal
		results = append(results, rec)
	}

	return &Envelope{
		QueryType: intent.TypeOrderTotalByTxnType,
		Results:   results,
		Metadata: map[string]interface{}{
			"requestedTypes":            requestedTypes,
			"matchedTransactions":       len(results),
			"totalSum":                  totalSum,
			"availableTransactionTypes": report.UniqueStrings(available),
			"invalidTypes":              []string{},
			"allKnownTypes":             report.KnownTransactionTypes,
		},
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
