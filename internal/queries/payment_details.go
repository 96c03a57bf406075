package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

func (e *Engine) getPaymentDetails(ctx context.Context, doc *report.Document, query string) *Envelope {
	txns := doc.Transactions()
	if len(txns) == 0 {
		return &Envelope{
			QueryType: intent.TypePaymentDetails,
			Results:   []PaymentRecord{},
			Metadata:  map[string]interface{}{"error": "No transaction data found"},
		}
	}

	requestedTypes := report.ExtractTypes(query)
	if len(requestedTypes) == 0 && query != "" && e.ai != nil {
		requestedTypes = e.inferTransactionTypes(ctx, query)
	}

	allRecords := []PaymentRecord{}
	skipped := []SkippedTransaction{}

	for _, txn := range txns {
		txnType := strings.ToUpper(strings.TrimSpace(report.StringOr(txn, "", "transactionType")))
		evID := report.StringOr(txn, "N/A", "eventId")

		details, _ := report.Details(txn)
		payments, ok := report.DigMap(details, "payments")
		if !ok {
			skipped = append(skipped, SkippedTransaction{
				EventID:         evID,
				TransactionType: txnType,
				Reason:          "No payments section",
			})
			continue
		}

		paymentMethods := report.FirstOrSelf(payments["paymentMethods"])
		chargeSet := report.FirstOrSelf(paymentMethods["chargeTransactionDetailSet"])

		if !hasPaymentData(payments, paymentMethods, chargeSet) {
			skipped = append(skipped, SkippedTransaction{
				EventID:         evID,
				TransactionType: txnType,
				Reason:          "No relevant payment data",
			})
			continue
		}

		allRecords = append(allRecords, PaymentRecord{
			EventID:         evID,
			TransactionType: txnType,
			OrderNo:         report.StringOr(txn, "N/A", "orderNo"),

			PaymentStatus:           report.StringOr(payments, "N/A", "paymentStatus"),
			TotalOpenAuthorizations: report.StringOr(payments, "N/A", "totalOpenAuthorizations"),
			TotalOpenBookings:       report.StringOr(payments, "N/A", "totalOpenBookings"),

			CreditCardType:      report.StringOr(paymentMethods, "N/A", "creditCardType"),
			CreditCardNo:        report.StringOr(paymentMethods, "N/A", "creditCardNo"),
			DisplayCreditCardNo: report.StringOr(paymentMethods, "N/A", "displayCreditCardNo"),
			CreditCardExpDate:   report.StringOr(paymentMethods, "N/A", "creditCardExpDate"),
			FirstName:           report.StringOr(paymentMethods, "N/A", "firstName"),
			LastName:            report.StringOr(paymentMethods, "N/A", "lastName"),

			PaymentType:       report.StringOr(paymentMethods, "N/A", "paymentType"),
			PaymentReference1: report.StringOr(paymentMethods, "N/A", "paymentReference1"),
			PaymentKey:        report.StringOr(paymentMethods, "N/A", "paymentKey"),
			MaxChargeLimit:    report.StringOr(paymentMethods, "N/A", "maxChargeLimit"),

			RequestAmount:               report.StringOr(chargeSet, "N/A", "requestAmount"),
			AuthorizationID:             report.StringOr(chargeSet, "N/A", "authorizationId"),
			BookAmount:                  report.StringOr(chargeSet, "N/A", "bookAmount"),
			CreditAmount:                report.StringOr(chargeSet, "N/A", "creditAmount"),
			AmountCollected:             report.StringOr(chargeSet, "N/A", "amountCollected"),
			Status:                      report.StringOr(chargeSet, "N/A", "status"),
			ChargeType:                  report.StringOr(chargeSet, "N/A", "chargeType"),
			RecordType:                  report.StringOr(chargeSet, "N/A", "recordType"),
			AuthorizationExpirationDate: report.StringOr(chargeSet, "N/A", "authorizationExpirationDate"),
			CollectionDate:              report.StringOr(chargeSet, "N/A", "collectionDate"),
		})
	}

	filtered := allRecords
	if len(requestedTypes) > 0 {
		filtered = []PaymentRecord{}
		for _, rec := range allRecords {
			if containsString(requestedTypes, rec.TransactionType) {
				filtered = append(filtered, rec)
				continue
			}
			skipped = append(skipped, SkippedTransaction{
				EventID:         rec.EventID,
				TransactionType: rec.TransactionType,
				Reason:          fmt.Sprintf("Filtered out - not in requested: [%s]", strings.Join(requestedTypes, ", ")),
			})
		}
	}

	returnedTypes := make([]string, 0, len(filtered))
	paymentTypes := make([]string, 0, len(filtered))
	paymentStatuses := make([]string, 0, len(filtered))
	cardTypes := make([]string, 0, len(filtered))
	for _, rec := range filtered {
		returnedTypes = append(returnedTypes, rec.TransactionType)
		paymentTypes = append(paymentTypes, rec.PaymentType)
		paymentStatuses = append(paymentStatuses, rec.PaymentStatus)
		cardTypes = append(cardTypes, rec.CreditCardType)
	}
	allTypes := make([]string, 0, len(allRecords))
	for _, rec := range allRecords {
		allTypes = append(allTypes, rec.TransactionType)
	}

	return &Envelope{
		QueryType: intent.TypePaymentDetails,
		Results:   filtered,
		Metadata: map[string]interface{}{
			"filteringApplied":             len(requestedTypes) > 0,
			"filteredBy":                   requestedTypes,
			"returnedTransactionTypes":     report.UniqueStrings(returnedTypes),
			"totalReturned":                len(filtered),
			"totalPaymentDetailsFound":     len(allRecords),
			"skippedTransactions":          skipped,
			"uniquePaymentTypes":           report.UniqueStrings(paymentTypes),
			"uniquePaymentStatuses":        report.UniqueStrings(paymentStatuses),
			"uniqueCreditCardTypes":        report.UniqueStrings(cardTypes),
			"allAvailableTransactionTypes": report.UniqueStrings(allTypes),
		},
	}
}

// hasPaymentData mirrors the presence check the report producers rely on: a
// transaction counts as carrying payment data when any of the three anchor
// fields is present.
func hasPaymentData(payments, paymentMethods, chargeSet map[string]interface{}) bool {
	if _, ok := report.StringAt(payments, "paymentStatus"); ok {
		return true
	}
	if _, ok := report.StringAt(paymentMethods, "creditCardNo"); ok {
		return true
	}
	_, ok := report.StringAt(chargeSet, "requestAmount")
	return ok
}

// inferTransactionTypes asks GenAI to pull transaction types out of a query
// that names none of the known variations. Any failure means no filtering.
func (e *Engine) inferTransactionTypes(ctx context.Context, query string) []string {
	prompt := fmt.Sprintf(
		"From this query, extract transaction types like CREATE_ORDER, CHANGE_ORDER from this list:\n[%s]\nReturn only valid types as JSON array.\n\nQuery: %q",
		strings.Join(report.KnownTransactionTypes, ", "), query)

	reply, err := e.ai.Complete(ctx, prompt)
	if e.obs != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.obs.RecordGenAICall(ctx, "infer-transaction-types", status)
	}
	if err != nil {
		e.logger.Warn("transaction type inference failed, skipping filter", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var extracted []string
	if err := json.Unmarshal([]byte(intent.StripCodeFences(reply)), &extracted); err != nil {
		e.logger.Warn("transaction type inference returned no usable array", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	types := make([]string, 0, len(extracted))
	for _, t := range extracted {
		if canonical, ok := report.NormalizeType(t); ok {
			types = append(types, canonical)
		}
	}
	return types
}
