package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mfbrokers/internal/auth"
	apperrors "mfbrokers/internal/errors"
	"mfbrokers/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockOTPStore is a mock implementation of OTPStoreInterface.
type MockOTPStore struct {
	mock.Mock
}

func (m *MockOTPStore) Store(ctx context.Context, email, otp string) error {
	args := m.Called(ctx, email, otp)
	return args.Error(0)
}

func (m *MockOTPStore) Consume(ctx context.Context, email, otp string) (bool, error) {
	args := m.Called(ctx, email, otp)
	return args.Bool(0), args.Error(1)
}

// MockMailer is a mock implementation of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOTP(ctx context.Context, recipient, otp string) error {
	args := m.Called(ctx, recipient, otp)
	return args.Error(0)
}

func newUserService(repo *MockUserRepository, otpStore *MockOTPStore, mailer *MockMailer) UserService {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	return NewUserService(repo, otpStore, tokens, mailer, zapNop())
}

func TestUserService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockOTPStore, *MockMailer)
		expectedError error
	}{
		{
			name:     "successful signup",
			email:    "a@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore, mMail *MockMailer) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mOTP.On("Store", mock.Anything, "a@x.com", mock.AnythingOfType("string")).Return(nil)
				// Delivery runs on a goroutine after the call returns.
				mMail.On("SendOTP", mock.Anything, "a@x.com", mock.AnythingOfType("string")).Return(nil).Maybe()
			},
			expectedError: nil,
		},
		{
			name:     "email already registered",
			email:    "existing@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore, mMail *MockMailer) {
				mRepo.On("FindByEmail", mock.Anything, "existing@x.com").Return(&model.User{Email: "existing@x.com"}, nil)
			},
			expectedError: apperrors.ErrAlreadyRegistered,
		},
		{
			name:     "concurrent duplicate resolved by unique constraint",
			email:    "racer@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore, mMail *MockMailer) {
				// Both requests pass the existence check; the insert loses.
				mRepo.On("FindByEmail", mock.Anything, "racer@x.com").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockOTP := new(MockOTPStore)
			mockMail := new(MockMailer)
			tt.setupMock(mockRepo, mockOTP, mockMail)

			service := newUserService(mockRepo, mockOTP, mockMail)
			user, err := service.Signup(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.False(t, user.IsVerified)
			}

			mockRepo.AssertExpectations(t)
			mockOTP.AssertExpectations(t)
		})
	}
}

func TestUserService_VerifyOTP(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		otp           string
		setupMock     func(*MockUserRepository, *MockOTPStore)
		expectedError error
	}{
		{
			name:  "successful verification",
			email: "a@x.com",
			otp:   "123456",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
				mOTP.On("Consume", mock.Anything, "a@x.com", "123456").Return(true, nil)
				mRepo.On("MarkVerified", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "user not found",
			email: "ghost@x.com",
			otp:   "123456",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore) {
				mRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:  "wrong code",
			email: "a@x.com",
			otp:   "000000",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
				mOTP.On("Consume", mock.Anything, "a@x.com", "000000").Return(false, nil)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
		{
			name:  "expired or already consumed code",
			email: "a@x.com",
			otp:   "123456",
			setupMock: func(mRepo *MockUserRepository, mOTP *MockOTPStore) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
				// The store reports absent entries and replays the same way.
				mOTP.On("Consume", mock.Anything, "a@x.com", "123456").Return(false, nil)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockOTP := new(MockOTPStore)
			tt.setupMock(mockRepo, mockOTP)

			service := newUserService(mockRepo, mockOTP, new(MockMailer))
			user, token, err := service.VerifyOTP(context.Background(), tt.email, tt.otp)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
			}

			mockRepo.AssertExpectations(t)
			mockOTP.AssertExpectations(t)
		})
	}
}

func TestUserService_VerifyOTP_SingleUse(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockOTP := new(MockOTPStore)

	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
	mockRepo.On("MarkVerified", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	// First consume succeeds, the entry is gone afterwards.
	mockOTP.On("Consume", mock.Anything, "a@x.com", "123456").Return(true, nil).Once()
	mockOTP.On("Consume", mock.Anything, "a@x.com", "123456").Return(false, nil).Once()

	service := newUserService(mockRepo, mockOTP, new(MockMailer))

	_, token, err := service.VerifyOTP(context.Background(), "a@x.com", "123456")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = service.VerifyOTP(context.Background(), "a@x.com", "123456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	mockOTP.AssertExpectations(t)
}

func TestUserService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password1"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
					ID:           1,
					Email:        "a@x.com",
					PasswordHash: string(hashed),
					IsVerified:   true,
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "ghost@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
					ID:           1,
					Email:        "a@x.com",
					PasswordHash: string(hashed),
					IsVerified:   true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "correct password but unverified",
			email:    "a@x.com",
			password: "password1",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
					ID:           1,
					Email:        "a@x.com",
					PasswordHash: string(hashed),
					IsVerified:   false,
				}, nil)
			},
			expectedError: apperrors.ErrNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newUserService(mockRepo, new(MockOTPStore), new(MockMailer))
			user, token, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
