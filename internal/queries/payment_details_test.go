package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func txnWithPayments(eventID, txnType, orderNo string, payments map[string]interface{}) map[string]interface{} {
	txn := map[string]interface{}{
		"eventId":         eventID,
		"transactionType": txnType,
		"orderNo":         orderNo,
	}
	details := map[string]interface{}{}
	if payments != nil {
		details["payments"] = payments
	}
	txn["transactionPayload"] = map[string]interface{}{
		"transactionPayload": map[string]interface{}{
			"attributes": map[string]interface{}{
				"transactionDetails": details,
			},
		},
	}
	return txn
}

func fullPayments() map[string]interface{} {
	return map[string]interface{}{
		"paymentStatus":           "PAID",
		"totalOpenAuthorizations": 0.0,
		"totalOpenBookings":       31.94,
		"paymentMethods": []interface{}{
			map[string]interface{}{
				"creditCardType":      "VISA",
				"creditCardNo":        "tok-4111",
				"displayCreditCardNo": "************1111",
				"creditCardExpDate":   "2027-04",
				"firstName":           "Dana",
				"lastName":            "Whitfield",
				"paymentType":         "CREDIT_CARD",
				"paymentReference1":   "ref-1",
				"paymentKey":          "pk-22",
				"maxChargeLimit":      "500",
				"chargeTransactionDetailSet": map[string]interface{}{
					"requestAmount":               "31.94",
					"authorizationId":             "auth-9",
					"bookAmount":                  "31.94",
					"status":                      "CLOSED",
					"chargeType":                  "AUTHORIZATION",
					"recordType":                  "CP",
					"authorizationExpirationDate": "2026-09-01",
					"collectionDate":              "2026-08-02",
				},
			},
		},
	}
}

func TestGetPaymentDetails_FullRecord(t *testing.T) {
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "create_order ", "ORD-1", fullPayments()),
	})

	env := newTestEngine(nil).Dispatch(context.Background(), "getPaymentDetails", "payment details", doc)

	results := env.Results.([]PaymentRecord)
	assert.Len(t, results, 1)
	rec := results[0]

	// transactionType is normalized for comparison and output.
	assert.Equal(t, "CREATE_ORDER", rec.TransactionType)
	assert.Equal(t, "evt-1", rec.EventID)
	assert.Equal(t, "ORD-1", rec.OrderNo)
	assert.Equal(t, "PAID", rec.PaymentStatus)
	assert.Equal(t, "0", rec.TotalOpenAuthorizations)
	assert.Equal(t, "31.94", rec.TotalOpenBookings)
	assert.Equal(t, "VISA", rec.CreditCardType)
	assert.Equal(t, "tok-4111", rec.CreditCardNo)
	assert.Equal(t, "************1111", rec.DisplayCreditCardNo)
	assert.Equal(t, "Dana", rec.FirstName)
	assert.Equal(t, "31.94", rec.RequestAmount)
	assert.Equal(t, "auth-9", rec.AuthorizationID)
	assert.Equal(t, "CLOSED", rec.Status)
	// Fields the document omits fall back to the sentinel.
	assert.Equal(t, "N/A", rec.CreditAmount)
	assert.Equal(t, "N/A", rec.AmountCollected)

	assert.Equal(t, false, env.Metadata["filteringApplied"])
	assert.Equal(t, 1, env.Metadata["totalReturned"])
	assert.Equal(t, []string{"CREDIT_CARD"}, env.Metadata["uniquePaymentTypes"])
	assert.Equal(t, []string{"PAID"}, env.Metadata["uniquePaymentStatuses"])
	assert.Equal(t, []string{"VISA"}, env.Metadata["uniqueCreditCardTypes"])
}

func TestGetPaymentDetails_SkipReasons(t *testing.T) {
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "CREATE_ORDER", "ORD-1", nil),
		txnWithPayments("evt-2", "CHANGE_ORDER", "ORD-2", map[string]interface{}{
			"paymentMethods": map[string]interface{}{"firstName": "Sam"},
		}),
		txnWithPayments("evt-3", "TRANS_IN", "ORD-3", fullPayments()),
	})

	env := newTestEngine(nil).Dispatch(context.Background(), "getPaymentDetails", "payment details", doc)

	results := env.Results.([]PaymentRecord)
	skipped := env.Metadata["skippedTransactions"].([]SkippedTransaction)

	assert.Len(t, results, 1)
	assert.Len(t, skipped, 2)
	assert.Equal(t, "No payments section", skipped[0].Reason)
	assert.Equal(t, "evt-1", skipped[0].EventID)
	assert.Equal(t, "No relevant payment data", skipped[1].Reason)
	assert.Equal(t, "evt-2", skipped[1].EventID)

	// Every transaction is accounted for.
	assert.Equal(t, 3, len(results)+len(skipped))
}

func TestGetPaymentDetails_FilterByNamedType(t *testing.T) {
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "CREATE_ORDER", "ORD-1", fullPayments()),
		txnWithPayments("evt-2", "CHANGE_ORDER", "ORD-2", fullPayments()),
	})

	env := newTestEngine(nil).Dispatch(context.Background(), "getPaymentDetails", "payment details for create order", doc)

	results := env.Results.([]PaymentRecord)
	assert.Len(t, results, 1)
	assert.Equal(t, "CREATE_ORDER", results[0].TransactionType)

	assert.Equal(t, true, env.Metadata["filteringApplied"])
	assert.Equal(t, []string{"CREATE_ORDER"}, env.Metadata["filteredBy"])
	assert.Equal(t, 2, env.Metadata["totalPaymentDetailsFound"])

	skipped := env.Metadata["skippedTransactions"].([]SkippedTransaction)
	assert.Len(t, skipped, 1)
	assert.Equal(t, "evt-2", skipped[0].EventID)
	assert.Equal(t, "Filtered out - not in requested: [CREATE_ORDER]", skipped[0].Reason)
	assert.Equal(t, []string{"CHANGE_ORDER", "CREATE_ORDER"}, env.Metadata["allAvailableTransactionTypes"])
}

func TestGetPaymentDetails_InfersTypesViaGenAI(t *testing.T) {
	ai := &stubCompleter{reply: "```json\n[\"CHANGE_ORDER\"]\n```"}
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "CREATE_ORDER", "ORD-1", fullPayments()),
		txnWithPayments("evt-2", "CHANGE_ORDER", "ORD-2", fullPayments()),
	})

	// The query names no known type variation, so the completer is asked.
	env := newTestEngine(ai).Dispatch(context.Background(), "getPaymentDetails", "payments for the amendments", doc)

	assert.Equal(t, 1, ai.calls)
	results := env.Results.([]PaymentRecord)
	assert.Len(t, results, 1)
	assert.Equal(t, "CHANGE_ORDER", results[0].TransactionType)
	assert.Equal(t, true, env.Metadata["filteringApplied"])
}

func TestGetPaymentDetails_InferenceFailureMeansNoFilter(t *testing.T) {
	ai := &stubCompleter{err: errors.New("GENAI_CALL_FAILED: unreachable")}
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "CREATE_ORDER", "ORD-1", fullPayments()),
		txnWithPayments("evt-2", "CHANGE_ORDER", "ORD-2", fullPayments()),
	})

	env := newTestEngine(ai).Dispatch(context.Background(), "getPaymentDetails", "payments for the amendments", doc)

	assert.Equal(t, 1, ai.calls)
	assert.Len(t, env.Results.([]PaymentRecord), 2)
	assert.Equal(t, false, env.Metadata["filteringApplied"])
}

func TestGetPaymentDetails_UnknownInferredTypesDiscarded(t *testing.T) {
	ai := &stubCompleter{reply: `["DELETE_EVERYTHING", "change order"]`}
	doc := reportDoc([]interface{}{
		txnWithPayments("evt-1", "CREATE_ORDER", "ORD-1", fullPayments()),
		txnWithPayments("evt-2", "CHANGE_ORDER", "ORD-2", fullPayments()),
	})

	env := newTestEngine(ai).Dispatch(context.Background(), "getPaymentDetails", "payments for the amendments", doc)

	results := env.Results.([]PaymentRecord)
	assert.Len(t, results, 1)
	assert.Equal(t, "CHANGE_ORDER", results[0].TransactionType)
}

func TestGetPaymentDetails_MissingRoot(t *testing.T) {
	env := newTestEngine(nil).Dispatch(context.Background(), "getPaymentDetails", "payment details", reportDoc(nil))

	assert.Empty(t, env.Results)
	assert.Equal(t, "No transaction data found", env.Metadata["error"])
}
