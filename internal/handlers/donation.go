package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.uber.org/zap"

	"crowdfund-platform/internal/middleware"
	"crowdfund-platform/internal/payments"
)

// PaymentService is the optional gateway flow.
type PaymentService interface {
	StartCheckout(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*payments.Checkout, error)
	HandleNotification(ctx context.Context, orderID string) (payments.Outcome, error)
}

type DonationHandler struct {
	Fundraising FundraisingService
	Payments    PaymentService
	Log         *zap.Logger
}

func NewDonationHandler(svc FundraisingService, pay PaymentService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{Fundraising: svc, Payments: pay, Log: log}
}

type CreateDonationRequest struct {
	Amount  int64  `json:"amount"`
	Comment string `json:"comment"`
}

func (h *DonationHandler) Donate(c *gin.Context) {
	donorID, _ := middleware.UserID(c)

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	donation, err := h.Fundraising.Donate(c.Request.Context(), donorID, c.Param("id"), req.Amount, req.Comment)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, donation)
}

func (h *DonationHandler) List(c *gin.Context) {
	donations, err := h.Fundraising.ListDonationsForFundraiser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (h *DonationHandler) Checkout(c *gin.Context) {
	donorID, _ := middleware.UserID(c)

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	checkout, err := h.Payments.StartCheckout(c.Request.Context(), donorID, c.Param("id"), req.Amount, req.Comment)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment link created.",
		"order_id":     checkout.OrderID,
		"redirect_url": checkout.RedirectURL,
		"amount":       checkout.Amount,
	})
}

// HandlePaymentNotification only reads the order id from the body; the
// payment service asks the gateway for the real status.
func (h *DonationHandler) HandlePaymentNotification(c *gin.Context) {
	var notification coreapi.TransactionStatusResponse
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.Log.Warn("failed to bind payment notification", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification format"})
		return
	}

	outcome, err := h.Payments.HandleNotification(c.Request.Context(), notification.OrderID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": outcome})
}
