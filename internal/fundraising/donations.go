package fundraising

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
)

// PrepareDonation validates a contribution and builds the ledger entry with
// the donor and fundraiser details copied in. Nothing is written.
func (s *Service) PrepareDonation(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*models.Donation, error) {
	comment = strings.TrimSpace(comment)
	if err := s.validator.Donation(amount, comment); err != nil {
		return nil, err
	}

	donor, err := s.store.GetUserByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	fundraiser, err := s.store.GetFundraiser(ctx, strings.TrimSpace(fundraiserID))
	if err != nil {
		return nil, err
	}

	return &models.Donation{
		ID:              uuid.NewString(),
		FundraiserID:    fundraiser.ID,
		FundraiserTitle: fundraiser.Title,
		DonorID:         donor.ID,
		DonorName:       donor.Name,
		DonorEmail:      donor.Email,
		Amount:          amount,
		Comment:         comment,
		CreatedAt:       s.now(),
	}, nil
}

// Donate records a contribution. The ledger entry and the raised total are
// written in one transaction, so either both change or neither does.
func (s *Service) Donate(ctx context.Context, donorID, fundraiserID string, amount int64, comment string) (*models.Donation, error) {
	d, err := s.PrepareDonation(ctx, donorID, fundraiserID, amount, comment)
	if err != nil {
		return nil, err
	}

	raised, err := s.store.RecordDonation(ctx, d)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.Error("donation write failed",
				zap.String("fundraiser_id", d.FundraiserID),
				zap.String("donor_id", d.DonorID),
				zap.Int64("amount", d.Amount),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.log.Info("donation recorded",
		zap.String("donation_id", d.ID),
		zap.String("fundraiser_id", d.FundraiserID),
		zap.Int64("amount", d.Amount),
		zap.Int64("raised_amount", raised),
	)
	s.notifier.NotifyDonation(*d, raised)
	return d, nil
}

// Publish hands a donation committed elsewhere, such as a settled payment, to
// the live alert notifier.
func (s *Service) Publish(d models.Donation, raisedAmount int64) {
	s.notifier.NotifyDonation(d, raisedAmount)
}

// ListDonationsForFundraiser returns the ledger of one fundraiser, newest first.
func (s *Service) ListDonationsForFundraiser(ctx context.Context, fundraiserID string) ([]models.Donation, error) {
	f, err := s.store.GetFundraiser(ctx, strings.TrimSpace(fundraiserID))
	if err != nil {
		return nil, err
	}
	return s.store.ListDonationsByFundraiser(ctx, f.ID)
}
