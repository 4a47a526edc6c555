package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/repository"
)

// Input limits for registration.
const (
	maxNameLength     = 100
	maxEmailLength    = 254
	maxPasswordLength = 1024
)

// Login failure reasons. They are logged, never returned to clients.
const (
	ReasonUserNotFound  = "user_not_found"
	ReasonWrongPassword = "wrong_password"
)

// TokenTypeBearer is the token_type returned by Login.
const TokenTypeBearer = "bearer"

// dummyPassword is hashed once so unknown-email logins cost one verification.
const dummyPassword = "scribe-dummy-password"

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	users        UserStore
	hasher       PasswordHasher
	tokens       TokenIssuer
	metrics      metrics.Recorder
	logger       *slog.Logger
	storeTimeout time.Duration
	dummyHash    string
}

// NewAuthService creates a new AuthService.
// It fails if the hasher cannot produce the dummy hash used for unknown emails.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder, logger *slog.Logger, storeTimeout time.Duration) (*AuthService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy password hash: %w", err)
	}

	return &AuthService{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		metrics:      recorder,
		logger:       logger,
		storeTimeout: storeTimeout,
		dummyHash:    dummyHash,
	}, nil
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the registration fields.
func (in RegisterInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return invalid("name", "is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		return invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	if err := validateEmail(in.Email); err != nil {
		return err
	}

	switch {
	case in.Password == "":
		return invalid("password", "is required")
	case len(in.Password) > maxPasswordLength:
		return invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}

	return nil
}

// validateEmail accepts a bare address such as "ann@x.com".
// Display names and surrounding whitespace are rejected.
func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if len(email) > maxEmailLength {
		return invalid("email", fmt.Sprintf("must be at most %d characters", maxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("email", "is not a valid email address")
	}
	return nil
}

// Register creates a user with a freshly hashed password.
// The raw password is not retained.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, storeError("failed to create user", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	User        model.UserSummary
}

// Login verifies credentials and issues an access token.
// Unknown email and wrong password both return ErrInvalidCredentials;
// the wrapped reason is for logs only.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" {
		return nil, invalid("email", "is required")
	}
	if input.Password == "" {
		return nil, invalid("password", "is required")
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn one verification so response time does not reveal the miss.
			s.hasher.Verify(input.Password, s.dummyHash)
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, ReasonUserNotFound)
		}
		return nil, storeError("failed to get user by email", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, ReasonWrongPassword)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, input.Password)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		User:        user.Summary(),
	}, nil
}

// upgradeHash re-hashes a verified password with current parameters.
// Failures are logged and do not fail the login.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.logger.Warn("password rehash not stored", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	user.PasswordHash = hash
	s.logger.Info("password hash upgraded", slog.String("user_id", user.ID))
}

// Caller is the identity resolved from a bearer token.
type Caller struct {
	User *model.User
	// ReissuedToken is set when the presented token is past its half-life.
	ReissuedToken string
}

// ResolveCaller authenticates the raw Authorization header value.
// Every authentication failure matches ErrUnauthenticated; store outages
// match ErrUnavailable instead.
func (s *AuthService) ResolveCaller(ctx context.Context, authorization string) (*Caller, error) {
	raw, err := bearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.metrics.IncTokenRejected()
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	userID, ok := model.CanonicalID(claims.UserID())
	if !ok {
		s.metrics.IncTokenRejected()
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncTokenRejected()
			return nil, fmt.Errorf("%w: subject no longer exists", ErrUnauthenticated)
		}
		return nil, storeError("failed to resolve caller", err)
	}

	caller := &Caller{User: user}

	if s.tokens.NeedsReissue(claims) {
		token, err := s.tokens.Issue(user.ID)
		if err != nil {
			s.logger.Warn("token reissue failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		} else {
			caller.ReissuedToken = token
			s.metrics.IncTokenReissued()
		}
	}

	return caller, nil
}

// bearerToken extracts the token from "Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrUnauthenticated)
	}

	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: unsupported authorization scheme", ErrUnauthenticated)
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", fmt.Errorf("%w: malformed bearer token", ErrUnauthenticated)
	}

	return token, nil
}
