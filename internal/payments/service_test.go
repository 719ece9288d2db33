package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"crowdfund-platform/internal/fundraising"
	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/storage"
	"crowdfund-platform/internal/validation"
)

type countingNotifier struct{ raised []int64 }

func (n *countingNotifier) NotifyDonation(_ models.Donation, raised int64) {
	n.raised = append(n.raised, raised)
}

type PaymentsTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *storage.Store
	gateway    *MockGateway
	notifier   *countingNotifier
	svc        *Service
	donor      *models.User
	fundraiser *models.Fundraiser
}

func (suite *PaymentsTestSuite) SetupTest() {
	t := suite.T()
	suite.ctx = context.Background()

	store, err := storage.Open(suite.ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(suite.ctx))
	suite.store = store

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	suite.notifier = &countingNotifier{}
	donations := fundraising.NewService(store, validation.New(clock), zap.NewNop(),
		fundraising.WithClock(clock), fundraising.WithNotifier(suite.notifier))

	ctrl := gomock.NewController(t)
	suite.gateway = NewMockGateway(ctrl)
	suite.svc = NewService(suite.gateway, store, donations, zap.NewNop())

	owner := &models.User{ID: uuid.NewString(), Name: "Ann", Email: "ann@x.com", Mobile: "9990001111", PasswordHash: "x", CreatedAt: now}
	suite.donor = &models.User{ID: uuid.NewString(), Name: "Bob", Email: "bob@x.com", Mobile: "9990002222", PasswordHash: "x", CreatedAt: now}
	require.NoError(t, store.CreateUser(suite.ctx, owner))
	require.NoError(t, store.CreateUser(suite.ctx, suite.donor))

	suite.fundraiser, err = donations.CreateFundraiser(suite.ctx, owner.ID, models.FundraiserInput{
		Title:             "Help Rex",
		Category:          string(models.CategoryAnimalWelfare),
		Description:       "Rex was hit by a car and needs surgery on his hind leg before the end of the month.",
		TargetAmount:      1000,
		EndDate:           now.Add(30 * 24 * time.Hour),
		AccountHolderName: "Ann",
		AccountNumber:     "123456789",
		BankName:          "SBI",
	}, nil)
	require.NoError(t, err)
}

func (suite *PaymentsTestSuite) TearDownTest() {
	suite.store.Close()
}

func (suite *PaymentsTestSuite) checkout(amount int64) *Checkout {
	suite.gateway.EXPECT().
		CreateCheckout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req CheckoutRequest) (string, error) {
			assert.Equal(suite.T(), amount, req.Amount)
			assert.Equal(suite.T(), "Donation to Help Rex", req.ItemName)
			return "https://pay.example/" + req.OrderID, nil
		})

	c, err := suite.svc.StartCheckout(suite.ctx, suite.donor.ID, suite.fundraiser.ID, amount, "for Rex")
	require.NoError(suite.T(), err)
	return c
}

func (suite *PaymentsTestSuite) raised() int64 {
	f, err := suite.store.GetFundraiser(suite.ctx, suite.fundraiser.ID)
	require.NoError(suite.T(), err)
	return f.RaisedAmount
}

func (suite *PaymentsTestSuite) TestCheckoutLeavesPendingPayment() {
	t := suite.T()
	c := suite.checkout(250)

	assert.True(t, strings.HasPrefix(c.OrderID, "DONATION-"))
	assert.Equal(t, "https://pay.example/"+c.OrderID, c.RedirectURL)

	p, err := suite.store.GetPayment(suite.ctx, c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "Bob", p.DonorName)
	assert.Zero(t, suite.raised())
}

func (suite *PaymentsTestSuite) TestCheckoutValidationSkipsGateway() {
	_, err := suite.svc.StartCheckout(suite.ctx, suite.donor.ID, suite.fundraiser.ID, 0, "")
	_, ok := models.AsValidation(err)
	assert.True(suite.T(), ok)

	_, err = suite.svc.StartCheckout(suite.ctx, suite.donor.ID, "unknown-id", 100, "")
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *PaymentsTestSuite) TestCheckoutGatewayFailure() {
	suite.gateway.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return("", errors.New("503"))

	_, err := suite.svc.StartCheckout(suite.ctx, suite.donor.ID, suite.fundraiser.ID, 250, "")
	assert.ErrorIs(suite.T(), err, models.ErrPaymentFailure)
}

func (suite *PaymentsTestSuite) TestSettlementIsRecordedOnce() {
	t := suite.T()
	c := suite.checkout(250)

	suite.gateway.EXPECT().
		TransactionStatus(gomock.Any(), c.OrderID).
		Return(&TransactionStatus{OrderID: c.OrderID, TransactionID: "tx-1", Status: "settlement", GrossAmount: "250.00"}, nil).
		Times(2)

	outcome, err := suite.svc.HandleNotification(suite.ctx, c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)

	outcome, err = suite.svc.HandleNotification(suite.ctx, c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	assert.Equal(t, int64(250), suite.raised())
	assert.Equal(t, []int64{250}, suite.notifier.raised)

	ledger, err := suite.store.ListDonationsByFundraiser(suite.ctx, suite.fundraiser.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "for Rex", ledger[0].Comment)

	p, err := suite.store.GetPayment(suite.ctx, c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSettled, p.Status)
	assert.Equal(t, "tx-1", p.GatewayTxID)
}

func (suite *PaymentsTestSuite) TestPendingStatusIsIgnored() {
	c := suite.checkout(250)
	suite.gateway.EXPECT().
		TransactionStatus(gomock.Any(), c.OrderID).
		Return(&TransactionStatus{OrderID: c.OrderID, Status: "pending"}, nil)

	outcome, err := suite.svc.HandleNotification(suite.ctx, c.OrderID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), OutcomeIgnored, outcome)
	assert.Zero(suite.T(), suite.raised())
}

func (suite *PaymentsTestSuite) TestAmountMismatchIsRejected() {
	c := suite.checkout(250)
	suite.gateway.EXPECT().
		TransactionStatus(gomock.Any(), c.OrderID).
		Return(&TransactionStatus{OrderID: c.OrderID, Status: "capture", GrossAmount: "25.00"}, nil)

	_, err := suite.svc.HandleNotification(suite.ctx, c.OrderID)
	assert.ErrorIs(suite.T(), err, models.ErrPaymentFailure)
	assert.Zero(suite.T(), suite.raised())
}

func (suite *PaymentsTestSuite) TestNotificationErrors() {
	t := suite.T()

	_, err := suite.svc.HandleNotification(suite.ctx, " ")
	_, ok := models.AsValidation(err)
	assert.True(t, ok)

	suite.gateway.EXPECT().TransactionStatus(gomock.Any(), "DONATION-ghost").
		Return(&TransactionStatus{OrderID: "DONATION-ghost", Status: "settlement"}, nil)
	_, err = suite.svc.HandleNotification(suite.ctx, "DONATION-ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	suite.gateway.EXPECT().TransactionStatus(gomock.Any(), "DONATION-down").Return(nil, errors.New("timeout"))
	_, err = suite.svc.HandleNotification(suite.ctx, "DONATION-down")
	assert.ErrorIs(t, err, models.ErrPaymentFailure)
}

func TestPaymentsTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentsTestSuite))
}

func TestAmountMatches(t *testing.T) {
	assert.True(t, amountMatches("250.00", 250))
	assert.True(t, amountMatches("250", 250))
	assert.True(t, amountMatches("", 250))
	assert.False(t, amountMatches("250.50", 250))
	assert.False(t, amountMatches("abc", 250))
	assert.False(t, amountMatches("25.00", 250))
}
