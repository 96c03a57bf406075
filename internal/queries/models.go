package queries

// SumLineTotalsResult aggregates every qualifying line total in the document.
type SumLineTotalsResult struct {
	Sum      float64  `json:"sum"`
	Count    int      `json:"count"`
	KeysUsed []string `json:"keysUsed"`
}

// MTLStatusRecord is the per-transaction processing status view.
type MTLStatusRecord struct {
	TransactionType      string `json:"transactionType"`
	InternalStatus       string `json:"internalStatus"`
	InternalFailedReason string `json:"internalFailedReason"`
	EventID              string `json:"eventId"`
	OrderNo              string `json:"orderNo"`
}

// InternalStatusRecord is one internalStatus hit from the flattened document,
// with its siblings resolved through the shared base path.
type InternalStatusRecord struct {
	InternalStatus  string `json:"internalStatus"`
	TransactionType string `json:"transactionType"`
	EventID         string `json:"eventId"`
	OrderNo         string `json:"orderNo"`
	BasePath        string `json:"basePath"`
}

// FailedReasonRecord is one internalFailedReason hit from the flattened
// document.
type FailedReasonRecord struct {
	InternalFailedReason string `json:"internalFailedReason"`
	TransactionType      string `json:"transactionType"`
	InternalStatus       string `json:"internalStatus"`
	EventID              string `json:"eventId"`
	OrderNo              string `json:"orderNo"`
	BasePath             string `json:"basePath"`
}

// OrderTotalRecord carries one transaction's grand total, both coerced and raw.
type OrderTotalRecord struct {
	EventID         string  `json:"eventId"`
	TransactionType string  `json:"transactionType"`
	OrderNo         string  `json:"orderNo"`
	GrandTotal      float64 `json:"grandTotal"`
	GrandTotalRaw   string  `json:"grandTotalRaw"`
}

// PaymentRecord is the full payment view of one transaction. Every field
// defaults to "N/A" when the source document omits it.
type PaymentRecord struct {
	EventID         string `json:"eventId"`
	TransactionType string `json:"transactionType"`
	OrderNo         string `json:"orderNo"`

	PaymentStatus           string `json:"paymentStatus"`
	TotalOpenAuthorizations string `json:"totalOpenAuthorizations"`
	TotalOpenBookings       string `json:"totalOpenBookings"`

	CreditCardType      string `json:"creditCardType"`
	CreditCardNo        string `json:"creditCardNo"`
	DisplayCreditCardNo string `json:"displayCreditCardNo"`
	CreditCardExpDate   string `json:"creditCardExpDate"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`

	PaymentType       string `json:"paymentType"`
	PaymentReference1 string `json:"paymentReference1"`
	PaymentKey        string `json:"paymentKey"`
	MaxChargeLimit    string `json:"maxChargeLimit"`

	RequestAmount               string `json:"requestAmount"`
	AuthorizationID             string `json:"authorizationId"`
	BookAmount                  string `json:"bookAmount"`
	CreditAmount                string `json:"creditAmount"`
	AmountCollected             string `json:"amountCollected"`
	Status                      string `json:"status"`
	ChargeType                  string `json:"chargeType"`
	RecordType                  string `json:"recordType"`
	AuthorizationExpirationDate string `json:"authorizationExpirationDate"`
	CollectionDate              string `json:"collectionDate"`
}

// SkippedTransaction names a transaction excluded from a payment result set.
type SkippedTransaction struct {
	EventID         string `json:"eventId"`
	TransactionType string `json:"transactionType"`
	Reason          string `json:"reason"`
}

// StoreRecord is one transaction's store placement.
type StoreRecord struct {
	EventID         string `json:"eventId"`
	TransactionType string `json:"transactionType"`
	LocationNumber  string `json:"locationNumber"`
	ZippedInStore   string `json:"zippedInStore"`
}

// OrderAttributesRecord carries the order-level attribute and totals fields.
type OrderAttributesRecord struct {
	EventID                 string `json:"eventId"`
	TransactionType         string `json:"transactionType"`
	OriginalInvoiceNo       string `json:"originalInvoiceNo"`
	OriginalMasterInvoiceNo string `json:"originalMasterInvoiceNo"`
	BusinessDate            string `json:"businessDate"`
	SalesDate               string `json:"salesDate"`
	GrandDiscount           string `json:"grandDiscount"`
	GrandTax                string `json:"grandTax"`
	GrandTotal              string `json:"grandTotal"`
	LineSubTotal            string `json:"lineSubTotal"`
}

// ItemLineRecord is one order line's totals.
type ItemLineRecord struct {
	EventID     string `json:"eventId"`
	OrderNo     string `json:"orderNo"`
	ItemID      string `json:"itemId"`
	PrimeLineNo string `json:"primeLineNo"`
	LineTotal   string `json:"lineTotal"`
	Tax         string `json:"tax"`
	Discount    string `json:"discount"`
}

// FallbackPlan is the structured query plan the GenAI planner returns.
type FallbackPlan struct {
	Extract []string          `json:"extract"`
	Filter  map[string]string `json:"filter,omitempty"`
}

// FallbackMatch is one flattened entry selected by a fallback plan.
type FallbackMatch struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FallbackResult pairs the plan with the entries it selected.
type FallbackResult struct {
	Plan      FallbackPlan    `json:"plan"`
	Extracted []FallbackMatch `json:"extracted"`
}
