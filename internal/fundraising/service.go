// Package fundraising implements the fundraiser lifecycle, the donation
// workflow and profile aggregation.
package fundraising

import (
	"context"
	"time"

	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/storage"
	"crowdfund-platform/internal/validation"
)

const (
	DefaultTrendingLimit = 6
	MaxTrendingLimit     = 50
)

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateFundraiser(ctx context.Context, f *models.Fundraiser) error
	GetFundraiser(ctx context.Context, id string) (*models.Fundraiser, error)
	ListFundraisers(ctx context.Context, filter storage.FundraiserFilter) ([]models.Fundraiser, error)

	RecordDonation(ctx context.Context, d *models.Donation) (int64, error)
	ListDonationsByFundraiser(ctx context.Context, fundraiserID string) ([]models.Donation, error)
	ListDonationsByDonor(ctx context.Context, donorID string) ([]models.Donation, error)
}

// Notifier is told about every donation after it has been committed.
type Notifier interface {
	NotifyDonation(d models.Donation, raisedAmount int64)
}

type noopNotifier struct{}

func (noopNotifier) NotifyDonation(models.Donation, int64) {}

// Service orchestrates fundraiser creation and donations.
type Service struct {
	store     Store
	validator *validation.Validator
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, validator *validation.Validator, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		notifier:  noopNotifier{},
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock, used by callers that derive fundraiser status.
func (s *Service) Now() time.Time {
	return s.now()
}
