package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/cache"
	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile operations. Profiles are read on every
// share resolve, so lookups go through the cache.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) (*model.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("user")
		}
		return nil, errors.Store("find user", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("user")
		}
		return nil, errors.Store("find user", err)
	}

	user.Name = name
	user.AvatarURL = strings.TrimSpace(avatarURL)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, errors.Store("update user", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("user")
		}
		return errors.Store("delete user", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
