package queries

import (
	"context"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getItemLineTotals(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypeItemLineTotals,
			Results:   []ItemLineRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction data found"},
		}
	}

	results := []ItemLineRecord{}
	items := []string{}
	orders := []string{}

	for _, txn := range txns {
		details, _ := report.Details(txn)
		orderLines, _ := report.Dig(details, "order", "orderLineDetailSet")

		for _, line := range report.AsSlice(orderLines) {
			rec := ItemLineRecord{
				EventID:     report.StringOr(txn, "N/A", "eventId"),
				OrderNo:     report.StringOr(txn, "N/A", "orderNo"),
				ItemID:      report.StringOr(line, "N/A", "item", "itemId"),
				PrimeLineNo: report.StringOr(line, "N/A", "primeLineNo"),
				LineTotal:   report.StringOr(line, "N/A", "lineOverallTotals", "lineTotal"),
				Tax:         report.StringOr(line, "N/A", "lineOverallTotals", "tax"),
				Discount:    report.StringOr(line, "N/A", "lineOverallTotals", "discount"),
			}
			results = append(results, rec)
			items = append(items, rec.ItemID)
			orders = append(orders, rec.OrderNo)
		}
	}

	return &Envelope{
		QueryType: intent.TypeItemLineTotals,
		Results:   results,
		Metadata: map[string]interface{}{
			"totalItems":   len(results),
			"uniqueItems":  report.UniqueStrings(items),
			"uniqueOrders": report.UniqueStrings(orders),
		},
	}
}
