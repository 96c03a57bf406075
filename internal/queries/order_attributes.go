package queries

import (
	"context"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getOrderAttributes(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypeOrderAttributes,
			Results:   []OrderAttributesRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction data found"},
		}
	}

	results := make([]OrderAttributesRecord, 0, len(txns))
	types := make([]string, 0, len(txns))

	for _, txn := range txns {
		details, _ := report.Details(txn)
		attrs, _ := report.DigMap(details, "order", "orderAttributes")
		totals, _ := report.DigMap(details, "totals")

		rec := OrderAttributesRecord{
			EventID:                 report.StringOr(txn, "N/A", "eventId"),
			TransactionType:         report.StringOr(txn, "N/A", "transactionType"),
			OriginalInvoiceNo:       report.StringOr(attrs, "N/A", "originalInvoiceNo"),
			OriginalMasterInvoiceNo: report.StringOr(attrs, "N/A", "originalMasterInvoiceNo"),
			BusinessDate:            report.StringOr(attrs, "N/A", "businessDate"),
			SalesDate:               report.StringOr(attrs, "N/A", "salesDate"),
			GrandDiscount:           report.StringOr(totals, "N/A", "grandDiscount"),
			GrandTax:                report.StringOr(totals, "N/A", "grandTax"),
			GrandTotal:              report.StringOr(totals, "N/A", "grandTotal"),
			LineSubTotal:            report.StringOr(totals, "N/A", "lineSubTotal"),
		}
		results = append(results, rec)
		types = append(types, rec.TransactionType)
	}

	return &Envelope{
		QueryType: intent.TypeOrderAttributes,
		Results:   results,
		Metadata: map[string]interface{}{
			"totalTransactions": len(results),
			"transactionTypes":  report.UniqueStrings(types),
		},
	}
}
