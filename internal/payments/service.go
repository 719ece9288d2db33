package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
)

// Outcome describes what a gateway notification did.
type Outcome string

const (
	OutcomeSettled   Outcome = "settled"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Store persists payments. *storage.Store implements it.
type Store interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, orderID string) (*models.Payment, error)
	SettlePayment(ctx context.Context, orderID, gatewayTxID string, d *models.Donation) (int64, error)
}

// Donations validates contributions and publishes settled ones.
// *fundraising.Service implements it.
type Donations interface {
	PrepareDonation(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*models.Donation, error)
	Publish(d models.Donation, raisedAmount int64)
}

// Checkout is returned to the donor, who completes payment at RedirectURL.
type Checkout struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
	Amount      int64  `json:"amount"`
}

type Service struct {
	gateway   Gateway
	store     Store
	donations Donations
	log       *zap.Logger
	now       func() time.Time
}

func NewService(gateway Gateway, store Store, donations Donations, log *zap.Logger) *Service {
	return &Service{gateway: gateway, store: store, donations: donations, log: log, now: time.Now}
}

// StartCheckout validates the donation, stores it as a pending payment and
// asks the gateway for a payment page.
func (s *Service) StartCheckout(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*Checkout, error) {
	d, err := s.donations.PrepareDonation(ctx, donorID, fundraiserID, amount, comment)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		OrderID:         "DONATION-" + uuid.NewString(),
		FundraiserID:    d.FundraiserID,
		FundraiserTitle: d.FundraiserTitle,
		DonorID:         d.DonorID,
		DonorName:       d.DonorName,
		DonorEmail:      d.DonorEmail,
		Amount:          d.Amount,
		Comment:         d.Comment,
		Status:          models.PaymentPending,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	url, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		DonorName:  p.DonorName,
		DonorEmail: p.DonorEmail,
		ItemName:   "Donation to " + p.FundraiserTitle,
	})
	if err != nil {
		s.log.Error("checkout failed", zap.String("order_id", p.OrderID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentFailure, err)
	}

	s.log.Info("checkout started",
		zap.String("order_id", p.OrderID),
		zap.String("fundraiser_id", p.FundraiserID),
		zap.Int64("amount", p.Amount),
	)
	return &Checkout{OrderID: p.OrderID, RedirectURL: url, Amount: p.Amount}, nil
}

// HandleNotification settles the payment for orderID once the gateway
// confirms it. The notification body itself is never trusted.
func (s *Service) HandleNotification(ctx context.Context, orderID string) (Outcome, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", models.NewValidationError("order_id", "Order ID is required")
	}

	status, err := s.gateway.TransactionStatus(ctx, orderID)
	if err != nil {
		s.log.Error("transaction verification failed", zap.String("order_id", orderID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrPaymentFailure, err)
	}

	if status.Status != "settlement" && status.Status != "capture" {
		s.log.Info("payment not settled", zap.String("order_id", orderID), zap.String("status", status.Status))
		return OutcomeIgnored, nil
	}

	p, err := s.store.GetPayment(ctx, orderID)
	if err != nil {
		return "", err
	}
	if p.Status == models.PaymentSettled {
		return OutcomeDuplicate, nil
	}
	if !amountMatches(status.GrossAmount, p.Amount) {
		s.log.Error("gross amount mismatch",
			zap.String("order_id", orderID),
			zap.String("gross_amount", status.GrossAmount),
			zap.Int64("expected", p.Amount),
		)
		return "", fmt.Errorf("%w: gross amount mismatch for %s", models.ErrPaymentFailure, orderID)
	}

	d := &models.Donation{
		ID:              uuid.NewString(),
		FundraiserID:    p.FundraiserID,
		FundraiserTitle: p.FundraiserTitle,
		DonorID:         p.DonorID,
		DonorName:       p.DonorName,
		DonorEmail:      p.DonorEmail,
		Amount:          p.Amount,
		Comment:         p.Comment,
		CreatedAt:       s.now(),
	}
	raised, err := s.store.SettlePayment(ctx, orderID, status.TransactionID, d)
	if errors.Is(err, models.ErrAlreadySettled) {
		return OutcomeDuplicate, nil
	}
	if err != nil {
		s.log.Error("payment settlement failed", zap.String("order_id", orderID), zap.Error(err))
		return "", err
	}

	s.log.Info("payment settled",
		zap.String("order_id", orderID),
		zap.String("transaction_id", status.TransactionID),
		zap.Int64("raised_amount", raised),
	)
	s.donations.Publish(*d, raised)
	return OutcomeSettled, nil
}

// amountMatches compares the gateway's decimal string with whole currency units.
func amountMatches(gross string, amount int64) bool {
	if gross == "" {
		return true
	}
	f, err := strconv.ParseFloat(gross, 64)
	if err != nil {
		return false
	}
	return int64(f) == amount && f == float64(int64(f))
}
