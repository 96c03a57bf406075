package queries

import (
	"context"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getStoreDetails(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypeStoreDetails,
			Results:   []StoreRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction data found"},
		}
	}

	results := make([]StoreRecord, 0, len(txns))
	types := make([]string, 0, len(txns))
	locations := make([]string, 0, len(txns))

	for _, txn := range txns {
		details, _ := report.Details(txn)
		storeInfo, _ := report.DigMap(details, "storeInfo")

		rec := StoreRecord{
			EventID:         report.StringOr(txn, "N/A", "eventId"),
			TransactionType: report.StringOr(txn, "N/A", "transactionType"),
			LocationNumber:  report.StringOr(storeInfo, "N/A", "locationNumber"),
			ZippedInStore:   report.StringOr(storeInfo, "N/A", "zippedInStore"),
		}
		results = append(results, rec)
		types = append(types, rec.TransactionType)
		locations = append(locations, rec.LocationNumber)
	}

	return &Envelope{
		QueryType: intent.TypeStoreDetails,
		Results:   results,
		Metadata: map[string]interface{}{
			"total":                  len(results),
			"uniqueTransactionTypes": report.UniqueStrings(types),
			"uniqueLocations":        report.UniqueStrings(locations),
		},
	}
}
