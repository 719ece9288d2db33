package fundraising

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/storage"
	"crowdfund-platform/internal/validation"
)

// CreateFundraiser validates the wizard input, snapshots the owner's contact
// details and stores a new fundraiser with nothing raised yet.
func (s *Service) CreateFundraiser(ctx context.Context, ownerID string, in models.FundraiserInput, docs []models.Document) (*models.Fundraiser, error) {
	in = trimInput(in)
	if err := s.validator.Fundraiser(in, docs); err != nil {
		return nil, err
	}

	owner, err := s.store.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	f := &models.Fundraiser{
		ID:           uuid.NewString(),
		OwnerID:      owner.ID,
		Title:        in.Title,
		Category:     models.Category(in.Category),
		Description:  in.Description,
		TargetAmount: in.TargetAmount,
		EndDate:      in.EndDate,
		Contact: models.ContactDetails{
			Name:   owner.Name,
			Email:  owner.Email,
			Mobile: owner.Mobile,
		},
		Bank: models.BankDetails{
			AccountHolderName: in.AccountHolderName,
			AccountNumber:     in.AccountNumber,
			BankName:          in.BankName,
			UPIID:             in.UPIID,
		},
		Documents: append([]models.Document{}, docs...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range f.Documents {
		if f.Documents[i].UploadedAt.IsZero() {
			f.Documents[i].UploadedAt = now
		}
	}

	if err := s.store.CreateFundraiser(ctx, f); err != nil {
		return nil, fmt.Errorf("fundraising: create: %w", err)
	}

	s.log.Info("fundraiser created",
		zap.String("fundraiser_id", f.ID),
		zap.String("owner_id", f.OwnerID),
		zap.String("category", string(f.Category)),
		zap.Int64("target_amount", f.TargetAmount),
	)
	return f, nil
}

// ValidateStep checks one page of the creation wizard.
func (s *Service) ValidateStep(step validation.Step, in models.FundraiserInput, docs []models.Document) error {
	return s.validator.FundraiserStep(step, trimInput(in), docs)
}

// ListFundraisers returns every fundraiser, newest first, optionally in one category.
func (s *Service) ListFundraisers(ctx context.Context, category string) ([]models.Fundraiser, error) {
	if err := s.validator.Category(category); err != nil {
		return nil, err
	}
	return s.store.ListFundraisers(ctx, storage.FundraiserFilter{Category: category})
}

// ListTrendingFundraisers returns the most recently created fundraisers.
// limit is clamped to 1..MaxTrendingLimit; zero or less means the default.
func (s *Service) ListTrendingFundraisers(ctx context.Context, limit int) ([]models.Fundraiser, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	if limit > MaxTrendingLimit {
		limit = MaxTrendingLimit
	}
	return s.store.ListFundraisers(ctx, storage.FundraiserFilter{Limit: limit})
}

func (s *Service) GetFundraiser(ctx context.Context, id string) (*models.Fundraiser, error) {
	return s.store.GetFundraiser(ctx, strings.TrimSpace(id))
}

func trimInput(in models.FundraiserInput) models.FundraiserInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.BankName = strings.TrimSpace(in.BankName)
	in.UPIID = strings.TrimSpace(in.UPIID)
	return in
}
