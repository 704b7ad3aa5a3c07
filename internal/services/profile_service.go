package services

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

// MaxNameLength bounds display names.
const MaxNameLength = 80

const defaultProfileName = "Student"

// ProfileService handles profile-related business logic
type ProfileService interface {
	// GetOrCreate returns the user's profile, creating it on first access.
	GetOrCreate(ctx context.Context, user models.User) (*models.Profile, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UpdateName renames the profile. On failure the stored profile is
	// returned alongside the error so callers can show the last good name.
	UpdateName(ctx context.Context, userID, name string) (*models.Profile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// DefaultName picks a display name for a new profile: the explicit name, the
// local part of the email, or a generic fallback.
func DefaultName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return defaultProfileName
}

func (s *profileService) GetOrCreate(ctx context.Context, user models.User) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading profile: user_id=%s", user.ID)

	profile, err := s.profileRepo.Get(ctx, user.ID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile != nil {
		return profile, nil
	}

	log.Info("creating profile for user_id=%s", user.ID)
	profile, err = s.profileRepo.Create(ctx, models.Profile{
		ID:         user.ID,
		Email:      user.Email,
		Name:       DefaultName(user.Name, user.Email),
		SkillLevel: models.SkillBeginner,
	})
	if stderrors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent first request.
		profile, err = s.profileRepo.Get(ctx, user.ID)
	}
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: user_id=%s", userID)

	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", userID)
	}
	return profile, nil
}

func (s *profileService) UpdateName(ctx context.Context, userID, name string) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("renaming profile: user_id=%s", userID)

	name = strings.TrimSpace(name)
	var invalid error
	switch {
	case name == "":
		invalid = errors.NewValidationError("name", "cannot be empty")
	case utf8.RuneCountInString(name) > MaxNameLength:
		invalid = errors.NewValidationError("name", "is too long")
	}
	if invalid != nil {
		return s.authoritative(ctx, userID, invalid)
	}

	if err := s.profileRepo.UpdateName(ctx, userID, name); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("profile", userID)
		}
		log.Error("failed to update profile name: %v", err)
		return s.authoritative(ctx, userID, errors.NewInternalError(err))
	}

	return s.GetProfile(ctx, userID)
}

// authoritative pairs cause with the stored profile, if it can be read.
func (s *profileService) authoritative(ctx context.Context, userID string, cause error) (*models.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to reload profile after rename failure: %v", err)
		return nil, cause
	}
	return profile, cause
}
