package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"onboarding/internal/auth"
	"onboarding/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, id auth.Identity, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, id, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (auth.Identity, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(auth.Identity), args.Error(1)
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

func newAuthServiceForTest(repo *MockUserRepository, tokens *MockTokenStore, content *memStore) AuthService {
	return NewAuthService(repo, content.Templates(), content.Categories(), auth.NewJWTService("test-secret"), tokens, zerolog.Nop())
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:      "successful registration",
			email:     "Test@Example.com",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository, tokens *MockTokenStore) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				tokens.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("auth.Identity"), auth.RefreshTokenExpiry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:      "user already exists",
			email:     "existing@example.com",
			password:  "password123",
			nameField: "Existing User",
			setupMock: func(m *MockUserRepository, _ *MockTokenStore) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)
			content := newMemStore()

			service := newAuthServiceForTest(mockRepo, mockTokenStore, content)
			result, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", result.User.Email)
				assert.Equal(t, tt.nameField, result.User.Name)
				assert.NotEmpty(t, result.User.PasswordHash)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)

				items, _ := content.Templates().ListByUser(context.Background(), result.User.ID, model.Unversioned())
				assert.Len(t, items, len(defaultItems))
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Name: "Test", PasswordHash: string(hashedPassword)}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"),
					auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name}, auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope",
			setupMock: func(mRepo *MockUserRepository, _ *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, _ *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "identity provider account has no password",
			email:    "sso@example.com",
			password: "anything",
			setupMock: func(mRepo *MockUserRepository, _ *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "sso@example.com").Return(&model.User{ID: uuid.New(), Email: "sso@example.com"}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			service := newAuthServiceForTest(mockRepo, mockTokenStore, newMemStore())
			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	identity := auth.Identity{ID: uuid.New(), Email: "test@example.com", Name: "Test"}
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(identity)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(identity, nil)
		service := NewAuthService(new(MockUserRepository), nil, nil, jwtService, tokens, zerolog.Nop())

		access, err := service.RefreshToken(context.Background(), refreshToken)
		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(access)
		require.NoError(t, err)
		got, err := claims.Identity()
		require.NoError(t, err)
		assert.Equal(t, identity, got)
	})

	t.Run("revoked", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(auth.Identity{}, assert.AnError)
		service := NewAuthService(new(MockUserRepository), nil, nil, jwtService, tokens, zerolog.Nop())

		_, err := service.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("garbage", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), nil, nil, jwtService, new(MockTokenStore), zerolog.Nop())
		_, err := service.RefreshToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	identity := auth.Identity{ID: uuid.New(), Email: "test@example.com"}
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(identity)
	require.NoError(t, err)
	access, err := jwtService.GenerateAccessToken(identity)
	require.NoError(t, err)
	accessClaims, err := jwtService.ValidateToken(access)
	require.NoError(t, err)

	tokens := new(MockTokenStore)
	tokens.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)
	tokens.On("BlacklistAccessToken", mock.Anything, accessClaims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.AccessTokenExpiry
	})).Return(nil)
	service := NewAuthService(new(MockUserRepository), nil, nil, jwtService, tokens, zerolog.Nop())

	require.NoError(t, service.Logout(context.Background(), refreshToken, accessClaims))
	tokens.AssertExpectations(t)
}
