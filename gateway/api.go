package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// API wraps a raw Client with one typed method per consumed endpoint.
// Read-only discovery calls authenticate with the public key; everything
// touching a payment object uses the private key.
type API struct {
	client Client
}

// NewAPI creates a typed API over the given transport client.
func NewAPI(client Client) *API {
	return &API{client: client}
}

func decode[T any](body []byte, what string) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", what, err)
	}
	return &out, nil
}

// Monitor issues the health check.
func (a *API) Monitor(ctx context.Context) (*MonitorResponse, error) {
	body, err := a.client.Get(ctx, "/monitor", AuthPublic)
	if err != nil {
		return nil, err
	}
	return decode[MonitorResponse](body, "monitor")
}

// PaymentMethods lists the methods available for a currency.
func (a *API) PaymentMethods(ctx context.Context, currency string) (*PaymentMethodsResponse, error) {
	body, err := a.client.Get(ctx, "/paymentmethods?currencyCode="+url.QueryEscape(currency), AuthPublic)
	if err != nil {
		return nil, err
	}
	return decode[PaymentMethodsResponse](body, "payment methods")
}

// CreatePaymentHandle tokenizes a payment attempt.
func (a *API) CreatePaymentHandle(ctx context.Context, req *PaymentHandleRequest) (*PaymentHandleResponse, error) {
	body, err := a.client.Post(ctx, "/paymenthandles", AuthPrivate, req)
	if err != nil {
		return nil, err
	}
	return decode[PaymentHandleResponse](body, "payment handle")
}

// SubmitPayment submits a payment against a handle token.
func (a *API) SubmitPayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	body, err := a.client.Post(ctx, "/payments", AuthPrivate, req)
	if err != nil {
		return nil, err
	}
	return decode[PaymentResponse](body, "payment")
}

// GetPayment reads a payment's current status.
func (a *API) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	body, err := a.client.Get(ctx, "/payments/"+url.PathEscape(id), AuthPrivate)
	if err != nil {
		return nil, err
	}
	return decode[PaymentResponse](body, "payment")
}

// CancelPayment requests cancellation of a pending payment.
func (a *API) CancelPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	req := &CancelRequest{Status: "CANCELLED"}
	body, err := a.client.Put(ctx, "/payments/"+url.PathEscape(id), AuthPrivate, req)
	if err != nil {
		return nil, err
	}
	return decode[PaymentResponse](body, "cancel")
}

// Settle creates a settlement for a completed payment.
func (a *API) Settle(ctx context.Context, paymentID string, req *SettlementRequest) (*SettlementResponse, error) {
	body, err := a.client.Post(ctx, "/payments/"+url.PathEscape(paymentID)+"/settlements", AuthPrivate, req)
	if err != nil {
		return nil, err
	}
	return decode[SettlementResponse](body, "settlement")
}

// Refund creates a refund against a settlement.
func (a *API) Refund(ctx context.Context, settlementID string, req *RefundRequest) (*RefundResponse, error) {
	body, err := a.client.Post(ctx, "/settlements/"+url.PathEscape(settlementID)+"/refunds", AuthPrivate, req)
	if err != nil {
		return nil, err
	}
	return decode[RefundResponse](body, "refund")
}

// GetRefund reads a refund's current status.
func (a *API) GetRefund(ctx context.Context, id string) (*RefundResponse, error) {
	body, err := a.client.Get(ctx, "/refunds/"+url.PathEscape(id), AuthPrivate)
	if err != nil {
		return nil, err
	}
	return decode[RefundResponse](body, "refund")
}
