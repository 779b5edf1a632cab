// Package auth verifies credentials against the credential store and turns
// successful logins and registrations into session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/logging"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
	"github.com/beesaferoot/rental-engine/internal/repository"
	"github.com/beesaferoot/rental-engine/internal/token"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes, so longer passwords are refused
	// rather than silently truncated.
	maxPasswordLen = 72
)

// Session is the result of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// RegisterRequest carries a self-service registration. A zero Role means
// the caller did not choose one and models.DefaultRole is used.
type RegisterRequest struct {
	Email         string
	Password      string
	Role          models.Role
	Firstname     string
	Lastname      string
	WalletAddress *string
}

type Authenticator struct {
	users            repository.UserStore
	tokens           *token.Service
	logger           *slog.Logger
	cost             int
	allowAdminSignup bool
	dummyHash        []byte
}

type Option func(*Authenticator)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(a *Authenticator) { a.cost = cost }
}

// WithAdminSignup lets self-service registration create administrators.
func WithAdminSignup(allow bool) Option {
	return func(a *Authenticator) { a.allowAdminSignup = allow }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = l }
}

func New(users repository.UserStore, tokens *token.Service, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		users:  users,
		tokens: tokens,
		logger: logging.Discard(),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	// Compared against when the email is unknown so that a miss costs the
	// same as a wrong password.
	hash, err := bcrypt.GenerateFromPassword([]byte("rental-engine-dummy-password"), a.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: preparing dummy hash: %w", err)
	}
	a.dummyHash = hash
	return a, nil
}

// NormalizeEmail trims and lower-cases an address. Uniqueness and lookups
// always operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and logs it in.
func (a *Authenticator) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	role := req.Role
	if role == 0 {
		role = models.DefaultRole
	}
	if !role.Valid() {
		return nil, apperr.InvalidInput("invalid role")
	}
	if role == models.RoleAdmin && !a.allowAdminSignup {
		return nil, apperr.InvalidInput("administrator accounts cannot be self-registered")
	}

	user, err := a.createUser(ctx, req, role)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role.String())
	return a.issue(user)
}

// CreateAdmin provisions an administrator outside self-service signup.
func (a *Authenticator) CreateAdmin(ctx context.Context, req RegisterRequest) (*models.User, error) {
	user, err := a.createUser(ctx, req, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "administrator created", "user_id", user.ID)
	return user, nil
}

func (a *Authenticator) createUser(ctx context.Context, req RegisterRequest, role models.Role) (*models.User, error) {
	email := NormalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err, "checking email")
	}
	if existing != nil {
		return nil, apperr.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return nil, apperr.Internal(err, "hashing password")
	}

	user := &models.User{
		Firstname:     strings.TrimSpace(req.Firstname),
		Lastname:      strings.TrimSpace(req.Lastname),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		WalletAddress: req.WalletAddress,
	}
	// A concurrent registration can still win between the lookup and the
	// insert; the unique index turns that into ErrDuplicateEmail.
	if err := a.users.Save(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.Internal(err, "saving user")
	}
	return user, nil
}

// Login checks the password and issues a token. Unknown emails and wrong
// passwords both fail with apperr.ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err, "looking up user")
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		a.logger.InfoContext(ctx, "login failed", "reason", "unknown email")
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.InfoContext(ctx, "login failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperr.ErrInvalidCredentials
	}
	return a.issue(user)
}

// Resolve maps a bearer token to the stored user. A valid token whose user
// has since been deleted fails with apperr.ErrUserVanished.
func (a *Authenticator) Resolve(ctx context.Context, raw string) (*models.User, error) {
	subject, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindByEmail(ctx, subject)
	if err != nil {
		return nil, apperr.Internal(err, "loading token subject")
	}
	if user == nil {
		a.logger.WarnContext(ctx, "token subject no longer exists", "subject", subject)
		return nil, apperr.ErrUserVanished
	}
	return user, nil
}

// ResolveCaller is Resolve reduced to the identity threaded through the core.
func (a *Authenticator) ResolveCaller(ctx context.Context, raw string) (policy.Identity, error) {
	user, err := a.Resolve(ctx, raw)
	if err != nil {
		return policy.Identity{}, err
	}
	return policy.IdentityOf(user), nil
}

func (a *Authenticator) issue(user *models.User) (*Session, error) {
	tok, err := a.tokens.Issue(user.Email)
	if err != nil {
		return nil, apperr.Internal(err, "issuing token")
	}
	return &Session{Token: tok.Value, ExpiresAt: tok.ExpiresAt, User: user}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.InvalidInput("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.InvalidInput("email %q is not a valid address", email)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.InvalidInput("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return apperr.InvalidInput("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}
