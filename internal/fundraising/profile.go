package fundraising

import (
	"context"
	"strings"

	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/storage"
)

// GetProfile composes a user with the fundraisers they own and the donations
// they have made.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.store.GetUserByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}

	fundraisers, err := s.store.ListFundraisers(ctx, storage.FundraiserFilter{OwnerID: user.ID})
	if err != nil {
		return nil, err
	}
	donations, err := s.store.ListDonationsByDonor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, d := range donations {
		total += d.Amount
	}

	return &models.Profile{
		User:         user.Public(),
		Fundraisers:  fundraisers,
		Donations:    donations,
		TotalDonated: total,
	}, nil
}
