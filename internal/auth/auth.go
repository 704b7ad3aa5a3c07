package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

const issuer = "quizflash"

// Service is the authentication provider: accounts, signed session tokens
// and sign-out.
type Service interface {
	SignUp(ctx context.Context, email, password, name string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (string, *models.User, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	SignOut(ctx context.Context, token string) error
}

// Option configures the auth service.
type Option func(*service)

// WithClock replaces time.Now for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.cost = cost }
}

// WithSignOutHook registers fn to run after a user signs out.
func WithSignOutHook(fn func(userID string)) Option {
	return func(s *service) { s.onSignOut = append(s.onSignOut, fn) }
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type service struct {
	users     repository.UserRepository
	secret    []byte
	ttl       time.Duration
	cost      int
	now       func() time.Time
	onSignOut []func(string)

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// NewService creates an auth Service signing HS256 tokens with secret.
func NewService(users repository.UserRepository, secret string, ttl time.Duration, opts ...Option) Service {
	s := &service{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth")
	log.Debug("signing up new account")

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, errors.NewValidationError("email", "must be a valid address")
	}
	if len(password) < MinPasswordLength {
		return nil, errors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("an account with this email already exists")
		}
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("account created: user_id=%s", user.ID)
	return &user, nil
}

func (s *service) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth")
	log.Debug("signing in")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up user: %v", err)
		return "", nil, errors.NewInternalError(err)
	}
	if user == nil {
		return "", nil, errors.NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug("password mismatch for user_id=%s", user.ID)
		return "", nil, errors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.issue(user)
	if err != nil {
		log.Error("failed to sign token: %v", err)
		return "", nil, errors.NewInternalError(err)
	}
	log.Info("user signed in: user_id=%s", user.ID)
	return token, user, nil
}

func (s *service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth")

	c, err := s.parse(token)
	if err != nil {
		log.Debug("rejected token: %v", err)
		return nil, errors.NewUnauthorizedError("invalid or expired session")
	}
	if s.isRevoked(c.ID) {
		log.Debug("rejected revoked token: jti=%s", c.ID)
		return nil, errors.NewUnauthorizedError("session has been signed out")
	}

	user, err := s.users.Get(ctx, c.Subject)
	if err != nil {
		log.Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("account no longer exists")
	}
	return user, nil
}

func (s *service) SignOut(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithPrefix("auth")

	c, err := s.parse(token)
	if err != nil {
		return errors.NewUnauthorizedError("invalid or expired session")
	}

	s.mu.Lock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[c.ID] = c.ExpiresAt.Time
	s.mu.Unlock()

	for _, fn := range s.onSignOut {
		fn(c.Subject)
	}
	log.Info("user signed out: user_id=%s", c.Subject)
	return nil
}

func (s *service) issue(user *models.User) (string, error) {
	now := s.now()
	c := claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *service) parse(token string) (*claims, error) {
	if token == "" {
		return nil, stderrors.New("empty token")
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if c.Subject == "" || c.ID == "" {
		return nil, stderrors.New("token missing subject or id")
	}
	return &c, nil
}

func (s *service) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}
