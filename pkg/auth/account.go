package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

const verificationTokenBytes = 32

// Notifier is told about account events that need out-of-band delivery.
type Notifier interface {
	SendVerification(ctx context.Context, user *domain.User, token string) error
}

// RegisterRequest is a self-service signup.
type RegisterRequest struct {
	Email    string
	Password string
	Name     *string
	// Role is accepted from clients but never honoured; signups are always AUTHENTICATED.
	Role string
}

// AccountService handles self-service registration, verification and login.
type AccountService struct {
	store      AccountStore
	lifecycle  *LoginLifecycle
	passwords  *PasswordPolicy
	emailRules EmailRules
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewAccountService creates a new account service.
func NewAccountService(store AccountStore, lifecycle *LoginLifecycle, passwords *PasswordPolicy, emailRules EmailRules, notifier Notifier, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:      store,
		lifecycle:  lifecycle,
		passwords:  passwords,
		emailRules: emailRules,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an unverified AUTHENTICATED account and hands the
// verification token to the notifier.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	user, err := newAccount(req.Email, req.Password, req.Name, domain.RoleAuthenticated, s.passwords, s.emailRules, s.now())
	if err != nil {
		return nil, err
	}

	token, err := GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, err
	}
	user.VerificationToken = &token

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("user_id", user.ID.String()))

	if s.notifier != nil {
		if err := s.notifier.SendVerification(ctx, user, token); err != nil {
			s.logger.Error("failed to send verification", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return user, nil
}

// VerifyEmail marks the account verified when token matches its verification token.
func (s *AccountService) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrVerificationTokenInvalid
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if user.EmailVerified {
		return user, nil
	}
	if user.VerificationToken == nil || token == "" ||
		subtle.ConstantTimeCompare([]byte(*user.VerificationToken), []byte(token)) != 1 {
		return nil, domain.ErrVerificationTokenInvalid
	}

	if err := s.store.MarkVerified(ctx, id); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	return user, nil
}

// Login authenticates email and password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	token, _, err := s.lifecycle.Authenticate(ctx, email, password)
	return token, err
}

// newAccount validates signup input and builds an account with a hashed password.
func newAccount(email, password string, name *string, role domain.Role, passwords *PasswordPolicy, rules EmailRules, now time.Time) (*domain.User, error) {
	if err := ValidateEmail(email, rules); err != nil {
		return nil, err
	}
	if passwords != nil {
		if err := passwords.ValidatePassword(password); err != nil {
			return nil, err
		}
	} else if password == "" {
		return nil, domain.MissingField("password")
	}

	var sanitized *string
	if name != nil {
		v := SanitizeText(*name)
		if v == "" {
			return nil, domain.InvalidField("name", "must not be empty")
		}
		if err := ValidateStringLength("name", v, 1, maxNameLength); err != nil {
			return nil, err
		}
		sanitized = &v
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Name:         sanitized,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
