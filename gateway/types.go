package gateway

// Endpoint records. Optional response fields are pointers or zero-value
// strings; the orchestrator validates the fields each transition requires.

// MonitorResponse is the body of GET /monitor.
type MonitorResponse struct {
	Status string `json:"status"`
}

// PaymentMethod is one entry of the payment-method listing.
type PaymentMethod struct {
	PaymentMethod string `json:"paymentMethod"`
	Currency      string `json:"currencyCode,omitempty"`
	AccountID     string `json:"accountId,omitempty"`
}

// PaymentMethodsResponse is the body of GET /paymentmethods.
// An empty list is not an error; the listing is informational.
type PaymentMethodsResponse struct {
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// CardExpiry is the card expiry pair.
type CardExpiry struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Card is the tokenization input for a payment handle.
type Card struct {
	CardNum    string     `json:"cardNum"`
	CardExpiry CardExpiry `json:"cardExpiry"`
	CVV        string     `json:"cvv"`
	HolderName string     `json:"holderName"`
}

// Profile is the customer profile attached to a payment handle.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// BillingDetails is the billing address attached to a payment handle.
type BillingDetails struct {
	NickName string `json:"nickName,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	State    string `json:"state,omitempty"`
}

// ReturnLink is one entry of the fixed return-link triple.
type ReturnLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// PaymentHandleRequest is the body of POST /paymenthandles.
type PaymentHandleRequest struct {
	MerchantRefNum  string         `json:"merchantRefNum"`
	TransactionType string         `json:"transactionType"`
	AmountMinor     int64          `json:"amount"`
	AccountID       string         `json:"accountId"`
	Card            Card           `json:"card"`
	Profile         Profile        `json:"profile"`
	PaymentType     string         `json:"paymentType"`
	CurrencyCode    string         `json:"currencyCode"`
	CustomerIP      string         `json:"customerIp"`
	BillingDetails  BillingDetails `json:"billingDetails"`
	ReturnLinks     []ReturnLink   `json:"returnLinks"`
}

// PaymentHandleResponse is the body of POST /paymenthandles.
type PaymentHandleResponse struct {
	ID                 string `json:"id,omitempty"`
	PaymentHandleToken string `json:"paymentHandleToken"`
	Status             string `json:"status,omitempty"`
}

// PaymentRequest is the body of POST /payments.
type PaymentRequest struct {
	MerchantRefNum     string `json:"merchantRefNum"`
	AmountMinor        int64  `json:"amount"`
	CurrencyCode       string `json:"currencyCode"`
	PaymentHandleToken string `json:"paymentHandleToken"`
}

// PaymentResponse is the body of POST /payments, GET /payments/{id}, and
// PUT /payments/{id}. Unknown statuses are passed through verbatim.
type PaymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	AmountMinor  int64  `json:"amount,omitempty"`
	CurrencyCode string `json:"currencyCode,omitempty"`
}

// CancelRequest is the body of PUT /payments/{id}.
type CancelRequest struct {
	Status string `json:"status"`
}

// SettlementRequest is the body of POST /payments/{id}/settlements.
type SettlementRequest struct {
	MerchantRefNum string `json:"merchantRefNum"`
	DupCheck       bool   `json:"dupCheck"`
	AmountMinor    int64  `json:"amount"`
}

// SettlementResponse is the body of POST /payments/{id}/settlements.
type SettlementResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	AvailableToRefund int64  `json:"availableToRefund"`
	TxnTime           string `json:"txnTime,omitempty"`
}

// RefundRequest is the body of POST /settlements/{id}/refunds.
type RefundRequest struct {
	MerchantRefNum string `json:"merchantRefNum"`
	DupCheck       bool   `json:"dupCheck"`
	AmountMinor    int64  `json:"amount"`
}

// RefundResponse is the body of POST /settlements/{id}/refunds and
// GET /refunds/{id}.
type RefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrorDetail is one advisory entry of a structured error body.
type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ErrorBody is the structured error the gateway returns on non-success
// statuses.
type ErrorBody struct {
	Code              string        `json:"code"`
	Message           string        `json:"message"`
	Details           []string      `json:"details,omitempty"`
	AdditionalDetails []ErrorDetail `json:"additionalDetails,omitempty"`
}

// ErrorEnvelope wraps the structured error body.
type ErrorEnvelope struct {
	Error *ErrorBody `json:"error"`
}
