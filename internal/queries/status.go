package queries

import (
	"context"
	"strings"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getMTLStatus(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypeMTLStatus,
			Results:   []MTLStatusRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction report found."},
		}
	}

	results := make([]MTLStatusRecord, 0, len(txns))
	types := make([]string, 0, len(txns))

	for i, txn := range txns {
		rec := MTLStatusRecord{
			TransactionType:      report.StringOr(txn, "N/A", "transactionType"),
			InternalStatus:       report.StringOr(txn, "N/A", "internalStatus"),
			InternalFailedReason: report.StringOr(txn, "N/A", "internalFailedReason"),
			EventID:              eventID(txn, i),
			OrderNo:              report.StringOr(txn, "N/A", "orderNo"),
		}
		results = append(results, rec)
		types = append(types, rec.TransactionType)
	}

	return &Envelope{
		QueryType: intent.TypeMTLStatus,
		Results:   results,
		Metadata: map[string]interface{}{
			"totalTransactions": len(results),
			"uniqueTypes":       report.UniqueStrings(types),
		},
	}
}

func (e *Engine) getInternalStatus(ctx context.Context, doc *report.Document, query string) *Envelope {
	flat, err := e.flatten(doc)
	if err != nil {
		return ErrorEnvelope(cerrors.NewDepthExceededError(e.config.MaxFlattenDepth))
	}

	results := []InternalStatusRecord{}
	statuses := []string{}

	for _, key := range report.SortedKeys(flat) {
		if !strings.Contains(key, "infinityTransactionReport") || !strings.HasSuffix(key, ".internalStatus") {
			continue
		}
		basePath := strings.TrimSuffix(key, ".internalStatus")
		rec := InternalStatusRecord{
			InternalStatus:  report.Stringify(flat[key]),
			TransactionType: flatString(flat, basePath+".transactionType"),
			EventID:         flatString(flat, basePath+".eventId"),
			OrderNo:         flatString(flat, basePath+".orderNo"),
			BasePath:        basePath,
		}
		results = append(results, rec)
		statuses = append(statuses, rec.InternalStatus)
	}

	return &Envelope{
		QueryType: intent.TypeInternalStatus,
		Results:   results,
		Metadata: map[string]interface{}{
			"totalStatuses":  len(results),
			"uniqueStatuses": report.UniqueStrings(statuses),
		},
	}
}

func (e *Engine) getInternalFailedReason(ctx context.Context, doc *report.Document, query string) *Envelope {
	flat, err := e.flatten(doc)
	if err != nil {
		return ErrorEnvelope(cerrors.NewDepthExceededError(e.config.MaxFlattenDepth))
	}

	results := []FailedReasonRecord{}
	reasons := []string{}

	for _, key := range report.SortedKeys(flat) {
		if !strings.Contains(key, "infinityTransactionReport") || !strings.HasSuffix(key, ".internalFailedReason") {
			continue
		}
		basePath := strings.TrimSuffix(key, ".internalFailedReason")
		rec := FailedReasonRecord{
			InternalFailedReason: report.Stringify(flat[key]),
			TransactionType:      flatString(flat, basePath+".transactionType"),
			InternalStatus:       flatString(flat, basePath+".internalStatus"),
			EventID:              flatString(flat, basePath+".eventId"),
			OrderNo:              flatString(flat, basePath+".orderNo"),
			BasePath:             basePath,
		}
		results = append(results, rec)
		reasons = append(reasons, rec.InternalFailedReason)
	}

	return &Envelope{
		QueryType: intent.TypeInternalFailedReason,
		Results:   results,
		Metadata: map[string]interface{}{
			"totalFailures": len(results),
			"uniqueReasons": report.UniqueStrings(reasons),
		},
	}
}
