package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mfbrokers/internal/auth"
	apperrors "mfbrokers/internal/errors"
	"mfbrokers/internal/mailer"
	"mfbrokers/internal/model"
	"mfbrokers/internal/repository"
)

const (
	bcryptCost         = 10
	otpDeliveryTimeout = 30 * time.Second
)

// UserService handles signup, OTP verification and login.
type UserService interface {
	Signup(ctx context.Context, email, password string) (*model.User, error)
	VerifyOTP(ctx context.Context, email, otp string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type userService struct {
	users    repository.UserRepository
	otpStore auth.OTPStoreInterface
	tokens   *auth.TokenService
	mailer   mailer.Mailer
	logger   *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	otpStore auth.OTPStoreInterface,
	tokens *auth.TokenService,
	mailer mailer.Mailer,
	logger *zap.Logger,
) UserService {
	return &userService{
		users:    users,
		otpStore: otpStore,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
	}
}

// Signup creates an unverified user, stores a fresh OTP and dispatches its
// delivery in the background.
func (s *userService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrAlreadyRegistered
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Concurrent signups can race past the existence check. The unique
		// index on email decides the winner; the loser gets the same
		// business error as a pre-check match.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otpStore.Store(ctx, email, otp); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	// Delivery is fire-and-forget: the signup response does not wait on
	// SMTP and failures are only logged.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), otpDeliveryTimeout)
		defer cancel()
		if err := s.mailer.SendOTP(sendCtx, email, otp); err != nil {
			s.logger.Error("send otp email", zap.String("email", email), zap.Error(err))
		}
	}()

	return user, nil
}

// VerifyOTP checks the submitted code, marks the user verified and issues
// an access token. The code is consumed on success, so a replay fails.
func (s *userService) VerifyOTP(ctx context.Context, email, otp string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	ok, err := s.otpStore.Consume(ctx, email, otp)
	if err != nil {
		return nil, "", fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return nil, "", apperrors.ErrInvalidOTP
	}

	if err := s.users.MarkVerified(ctx, user); err != nil {
		return nil, "", fmt.Errorf("mark verified: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues an access token. The credential
// check runs strictly before the verification check, so an unverified
// account is only distinguishable once the password matches.
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, "", apperrors.ErrNotVerified
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	return user, token, nil
}
