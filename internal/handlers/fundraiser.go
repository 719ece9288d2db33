package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crowdfund-platform/internal/middleware"
	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/validation"
)

// FundraisingService is the fundraiser, donation and profile surface used by the handlers.
type FundraisingService interface {
	CreateFundraiser(ctx context.Context, ownerID string, in models.FundraiserInput, docs []models.Document) (*models.Fundraiser, error)
	ValidateStep(step validation.Step, in models.FundraiserInput, docs []models.Document) error
	ListFundraisers(ctx context.Context, category string) ([]models.Fundraiser, error)
	ListTrendingFundraisers(ctx context.Context, limit int) ([]models.Fundraiser, error)
	GetFundraiser(ctx context.Context, id string) (*models.Fundraiser, error)
	Donate(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*models.Donation, error)
	ListDonationsForFundraiser(ctx context.Context, fundraiserID string) ([]models.Donation, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	Now() time.Time
}

type FundraiserHandler struct {
	Fundraising   FundraisingService
	TrendingLimit int
	Log           *zap.Logger
}

func NewFundraiserHandler(svc FundraisingService, trendingLimit int, log *zap.Logger) *FundraiserHandler {
	return &FundraiserHandler{Fundraising: svc, TrendingLimit: trendingLimit, Log: log}
}

// FundraiserRequest is the wizard payload. EndDate accepts RFC 3339 or a
// plain YYYY-MM-DD date.
type FundraiserRequest struct {
	Title             string            `json:"title"`
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	TargetAmount      int64             `json:"target_amount"`
	EndDate           string            `json:"end_date"`
	AccountHolderName string            `json:"account_holder_name"`
	AccountNumber     string            `json:"account_number"`
	BankName          string            `json:"bank_name"`
	UPIID             string            `json:"upi_id"`
	Documents         []models.Document `json:"documents"`
}

func (r FundraiserRequest) input() (models.FundraiserInput, error) {
	in := models.FundraiserInput{
		Title:             r.Title,
		Category:          r.Category,
		Description:       r.Description,
		TargetAmount:      r.TargetAmount,
		AccountHolderName: r.AccountHolderName,
		AccountNumber:     r.AccountNumber,
		BankName:          r.BankName,
		UPIID:             r.UPIID,
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return in, err
	}
	in.EndDate = end
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, models.NewValidationError("end_date", "End Date must be a valid date")
}

// fundraiserView adds the derived fields to a fundraiser.
type fundraiserView struct {
	models.Fundraiser
	Status            models.FundraiserStatus `json:"status"`
	PercentageReached float64                 `json:"percentage_reached"`
	DaysRemaining     int                     `json:"days_remaining"`
}

func newFundraiserView(f models.Fundraiser, now time.Time) fundraiserView {
	return fundraiserView{
		Fundraiser:        f,
		Status:            f.Status(now),
		PercentageReached: f.PercentageReached(),
		DaysRemaining:     f.DaysRemaining(now),
	}
}

func newFundraiserViews(fs []models.Fundraiser, now time.Time) []fundraiserView {
	out := make([]fundraiserView, len(fs))
	for i, f := range fs {
		out[i] = newFundraiserView(f, now)
	}
	return out
}

func (h *FundraiserHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, validation.Schema(h.Fundraising.Now()))
}

func (h *FundraiserHandler) ValidateStep(c *gin.Context) {
	var req FundraiserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if err := h.Fundraising.ValidateStep(validation.Step(c.Param("step")), in, req.Documents); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *FundraiserHandler) Create(c *gin.Context) {
	ownerID, _ := middleware.UserID(c)

	var req FundraiserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	f, err := h.Fundraising.CreateFundraiser(c.Request.Context(), ownerID, in, req.Documents)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, newFundraiserView(*f, h.Fundraising.Now()))
}

func (h *FundraiserHandler) List(c *gin.Context) {
	fundraisers, err := h.Fundraising.ListFundraisers(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, newFundraiserViews(fundraisers, h.Fundraising.Now()))
}

func (h *FundraiserHandler) Trending(c *gin.Context) {
	limit := h.TrendingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, h.Log, models.NewValidationError("limit", "Limit must be a number"))
			return
		}
		limit = n
	}

	fundraisers, err := h.Fundraising.ListTrendingFundraisers(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, newFundraiserViews(fundraisers, h.Fundraising.Now()))
}

func (h *FundraiserHandler) Get(c *gin.Context) {
	f, err := h.Fundraising.GetFundraiser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, newFundraiserView(*f, h.Fundraising.Now()))
}
