package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storysmith/internal/cache"
	"storysmith/internal/credits"
	"storysmith/internal/errors"
	"storysmith/internal/repository"
)

const (
	// profileCacheTTL is deliberately short: a cached profile skips the
	// credit refill pass, so staleness is bounded by this window.
	profileCacheTTL = 30 * time.Second

	// boostCredits is the balance set by a matching admin override
	// code. It deliberately exceeds the regeneration cap; the next
	// refill pass clamps it back down.
	boostCredits = 1000
)

// Profile is the sanitized user view returned to the dashboard.
type Profile struct {
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Credits    int       `json:"credits"`
	StoryCount int       `json:"story_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserService exposes profile and admin operations.
type UserService interface {
	Profile(ctx context.Context, email string) (*Profile, error)
	AdminBoost(ctx context.Context, email, code string) (*Profile, error)
}

type userService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	ownerCode string
	now       func() time.Time
}

// NewUserService builds a UserService. ownerCode is the out-of-band
// admin override code; an empty code disables the override entirely.
func NewUserService(repo repository.UserRepository, cache *cache.Client, ownerCode string) UserService {
	return &userService{
		repo:      repo,
		cache:     cache,
		ownerCode: ownerCode,
		now:       time.Now,
	}
}

func (s *userService) cacheKey(email string) string {
	return fmt.Sprintf("profile:%s", email)
}

// Profile returns the user's dashboard view, applying the periodic
// credit refill and persisting it when the balance moved.
func (s *userService) Profile(ctx context.Context, email string) (*Profile, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(email)); data != nil {
		var cached Profile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	balance, refilledAt, changed := credits.Regenerate(user.Credits, user.LastRefill, s.now())
	if changed {
		user.Credits = balance
		user.LastRefill = refilledAt
		if err := s.repo.SaveProgress(ctx, user); err != nil {
			return nil, fmt.Errorf("persist refill: %w", err)
		}
	}

	profile := &Profile{
		Email:      user.Email,
		Username:   user.Username,
		Credits:    user.Credits,
		StoryCount: len(user.Stories),
		CreatedAt:  user.CreatedAt,
	}

	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(email), payload, profileCacheTTL)
	}

	return profile, nil
}

// AdminBoost sets the balance to the privileged value when the override
// code matches. The code is compared verbatim; there are no roles.
func (s *userService) AdminBoost(ctx context.Context, email, code string) (*Profile, error) {
	if s.ownerCode == "" || code != s.ownerCode {
		return nil, errors.ErrInvalidAdminCode
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Repeating the boost is a no-op; writing the identical row would
	// report zero affected rows and read as a missing user.
	if user.Credits != boostCredits {
		user.Credits = boostCredits
		if err := s.repo.SaveProgress(ctx, user); err != nil {
			return nil, fmt.Errorf("persist boost: %w", err)
		}
	}

	_ = s.cache.Delete(ctx, s.cacheKey(email))

	return &Profile{
		Email:      user.Email,
		Username:   user.Username,
		Credits:    user.Credits,
		StoryCount: len(user.Stories),
		CreatedAt:  user.CreatedAt,
	}, nil
}
