// Package payments takes donations through the Midtrans payment gateway.
// A checkout leaves a pending payment behind; the gateway's notification
// settles it and only then does the donation reach the ledger.
package payments

//go:generate mockgen -destination=mock_gateway_test.go -package=payments . Gateway

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// CheckoutRequest is what the gateway needs to open a payment page.
type CheckoutRequest struct {
	OrderID    string
	Amount     int64
	DonorName  string
	DonorEmail string
	ItemName   string
}

// TransactionStatus is the gateway's view of an order.
type TransactionStatus struct {
	OrderID       string
	TransactionID string
	Status        string
	GrossAmount   string
}

// Gateway abstracts the payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (redirectURL string, err error)
	TransactionStatus(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// MidtransGateway uses Snap for checkout pages and the Core API to verify
// notifications.
type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	return &MidtransGateway{snap: s, core: c}
}

func (g *MidtransGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.DonorName,
			Email: req.DonorEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    "DONATION",
			Price: req.Amount,
			Qty:   1,
			Name:  truncate(req.ItemName, 50),
		}},
	}

	resp, merr := g.snap.CreateTransaction(snapReq)
	// Midtrans can return a usable response together with an error
	if resp == nil || resp.RedirectURL == "" {
		if merr != nil {
			return "", fmt.Errorf("midtrans: create transaction: %s", merr.Message)
		}
		return "", fmt.Errorf("midtrans: create transaction: empty response")
	}
	return resp.RedirectURL, nil
}

func (g *MidtransGateway) TransactionStatus(_ context.Context, orderID string) (*TransactionStatus, error) {
	resp, merr := g.core.CheckTransaction(orderID)
	if resp == nil {
		if merr != nil {
			return nil, fmt.Errorf("midtrans: check transaction %s: %s", orderID, merr.Message)
		}
		return nil, fmt.Errorf("midtrans: check transaction %s: empty response", orderID)
	}
	return &TransactionStatus{
		OrderID:       resp.OrderID,
		TransactionID: resp.TransactionID,
		Status:        resp.TransactionStatus,
		GrossAmount:   resp.GrossAmount,
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
