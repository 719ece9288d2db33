package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"crowdfund-platform/internal/models"
	"crowdfund-platform/internal/validation"
)

const issuer = "crowdfund"

// UserStore is the credential store used by the service.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	MobileTaken(ctx context.Context, mobile string) (bool, error)
}

// Session is returned by Signup and Login.
type Session struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

// Claims are carried by the session token. Subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Service issues and verifies session tokens.
type Service struct {
	users     UserStore
	validator *validation.Validator
	log       *zap.Logger
	secret    []byte
	ttl       time.Duration
	cost      int
	now       func() time.Time
}

func NewService(users UserStore, validator *validation.Validator, log *zap.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:     users,
		validator: validator,
		log:       log,
		secret:    []byte(opts.Secret),
		ttl:       opts.TTL,
		cost:      opts.BcryptCost,
		now:       opts.Now,
	}
}

// Signup registers a new account and logs it in.
func (s *Service) Signup(ctx context.Context, in models.SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)

	// 1. Validate the form
	if err := s.validator.Signup(in); err != nil {
		return nil, err
	}

	// 2. Reject taken email or mobile before spending time on the hash
	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("auth: check email: %w", err)
	}
	taken, err := s.users.MobileTaken(ctx, in.Mobile)
	if err != nil {
		return nil, fmt.Errorf("auth: check mobile: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateMobile
	}

	// 3. Hash the password, the plain text is never stored
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	// 4. Store the user. The unique indexes still guard against a racing signup.
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login checks the password. Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: load user: %w", err)
	}

	// Compare stored passwordHash with the user entered password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate verifies a session token and returns the user id it carries.
func (s *Service) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", models.ErrUnauthenticated
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", models.ErrUnauthenticated
		}
		return "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", models.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	// Create the claims
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	// Sign the token with jwt secret
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expires, User: user.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
