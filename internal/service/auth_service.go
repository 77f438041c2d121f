package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"onboarding/internal/auth"
	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.ErrInvalidCredentials
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = errors.ErrUserAlreadyExists
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.ErrInvalidRefreshToken
)

// AuthResult carries a signed-in user and their token pair.
type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	// Register creates the user, seeds their baseline content and signs them in.
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	// Logout drops the refresh token and blacklists the presented access
	// token until it would have expired anyway.
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	content    *contentWriter
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	categoryRepo repository.CategoryRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	log zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		content:    &contentWriter{templates: templateRepo, categories: categoryRepo, log: log},
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
	}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Store("check user existence", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Store("create user", err)
	}

	// The account is usable without its starter content.
	if err := s.content.seedBaseline(ctx, user.ID, nil); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("seed baseline content failed")
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Store("find user", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	id := auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name}

	accessToken, err := s.jwtService.GenerateAccessToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, id, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	claimed, err := claims.Identity()
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if stored.ID != claimed.ID || stored.Email != claimed.Email {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(stored)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if access == nil || access.ID == "" || access.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(access.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, ttl); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	return nil
}
