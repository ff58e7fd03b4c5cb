package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storysmith/internal/auth"
	"storysmith/internal/model"
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

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SaveProgress(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID, email, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, email, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "alice@example.com",
			username: "alice",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email already taken",
			email:    "taken@example.com",
			username: "newname",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:     "username already taken",
			email:    "fresh@example.com",
			username: "taken",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "fresh@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByUsername", mock.Anything, "taken").Return(&model.User{Username: "taken"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:     "insert race surfaces as conflict",
			email:    "race@example.com",
			username: "racer",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByUsername", mock.Anything, "racer").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			mockTokenStore := new(MockTokenStore)

			service := NewAuthService(mockRepo, jwtService, mockTokenStore)
			user, err := service.Register(context.Background(), tt.email, tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, model.DefaultCredits, user.Credits)
				assert.Empty(t, user.Stories)
				assert.False(t, user.LastRefill.IsZero())
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "alice@example.com",
			password: "pw123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("pw123"), 10)
				mRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
					Email:        "alice@example.com",
					Username:     "alice",
					PasswordHash: string(hashedPassword),
					Credits:      model.DefaultCredits,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, "alice@example.com", "alice", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "pw123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "not-the-password",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("pw123"), 10)
				mRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
					Email:        "alice@example.com",
					Username:     "alice",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockTokenStore)

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, model.DefaultCredits, user.Credits)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginCredentialErrorsAreIndistinguishable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("pw123"), 10)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		Email:        "alice@example.com",
		PasswordHash: string(hashedPassword),
	}, nil)

	service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore))

	_, _, _, unknownEmailErr := service.Login(context.Background(), "nobody@example.com", "pw123")
	_, _, _, wrongPasswordErr := service.Login(context.Background(), "alice@example.com", "wrong")

	assert.Equal(t, unknownEmailErr, wrongPasswordErr)
}

func TestAuthService_LogoutBlacklistsAccessToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	mockTokenStore := new(MockTokenStore)

	_, refreshToken, err := jwtService.GenerateRefreshToken("alice@example.com", "alice")
	assert.NoError(t, err)
	accessToken, err := jwtService.GenerateAccessToken("alice@example.com", "alice")
	assert.NoError(t, err)

	claims, err := jwtService.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	mockTokenStore.On("DeleteRefreshToken", mock.Anything, mock.Anything).Return(nil)
	mockTokenStore.On("BlacklistAccessToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.AccessTokenExpiry
	})).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
	err = service.Logout(context.Background(), refreshToken, accessToken)

	assert.NoError(t, err)
	mockTokenStore.AssertExpectations(t)
}

func TestAuthService_LogoutWithoutAccessToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	mockTokenStore := new(MockTokenStore)

	_, refreshToken, err := jwtService.GenerateRefreshToken("alice@example.com", "alice")
	assert.NoError(t, err)

	mockTokenStore.On("DeleteRefreshToken", mock.Anything, mock.Anything).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
	err = service.Logout(context.Background(), refreshToken, "")

	assert.NoError(t, err)
	mockTokenStore.AssertExpectations(t)
	mockTokenStore.AssertNotCalled(t, "BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything)
}
