package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/storage"
	"crowdfund-platform/internal/validation"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *storage.Store, *clock) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })

	c := &clock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(store, validation.New(c.Now), zap.NewNop(), Options{
		Secret:     "test-secret",
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        c.Now,
	})
	return svc, store, c
}

var ann = models.SignupInput{Name: "Ann", Email: "ann@x.com", Mobile: "9990001111", Password: "secret1"}

func TestSignupThenLogin(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Signup(ctx, ann)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ann@x.com", session.User.Email)

	stored, err := store.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, ann.Password, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(ann.Password)))

	userID, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, userID)

	_, err = svc.Login(ctx, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	login, err := svc.Login(ctx, " ANN@x.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, login.User.ID)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Login(context.Background(), "ghost@x.com", "secret1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestSignupDuplicates(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, ann)
	require.NoError(t, err)

	again := ann
	again.Mobile = "9990003333"
	_, err = svc.Signup(ctx, again)
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	sameMobile := ann
	sameMobile.Email = "ann2@x.com"
	_, err = svc.Signup(ctx, sameMobile)
	assert.ErrorIs(t, err, models.ErrDuplicateMobile)

	_, err = store.GetUserByEmail(ctx, "ann2@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound, "no record may be created for a rejected signup")
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Signup(context.Background(), models.SignupInput{Name: "Ann", Email: "nope", Mobile: "1", Password: "x"})
	verr, ok := models.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "mobile")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuthenticate(t *testing.T) {
	svc, _, c := newTestService(t)
	session, err := svc.Signup(context.Background(), ann)
	require.NoError(t, err)

	_, err = svc.Authenticate("")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.Authenticate("not-a-jwt")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	forged := NewService(nil, nil, zap.NewNop(), Options{Secret: "other", TTL: time.Hour, Now: c.Now})
	forgedSession, err := forged.issue(&models.User{ID: session.User.ID, Email: ann.Email})
	require.NoError(t, err)
	_, err = svc.Authenticate(forgedSession.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: session.User.ID, Issuer: issuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(unsigned)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	c.now = c.now.Add(2 * time.Hour)
	_, err = svc.Authenticate(session.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
