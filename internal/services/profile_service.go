package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/notehub/notehub/internal/models"
	pgrepo "github.com/notehub/notehub/internal/repositories/postgres"
	"github.com/notehub/notehub/internal/utils"
)

// ProfileInput carries partial profile fields; nil means "leave unchanged"
// on update and "not provided" on create.
type ProfileInput struct {
	Name           *string
	College        *string
	Branch         *string
	Semester       *int
	Bio            *string
	ProfilePicture *string
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, userID, email string, in ProfileInput) (*models.Profile, error)
	Update(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error)
	Delete(ctx context.Context, userID string) error

	// RequireComplete gates catalog access: browsing and uploading need
	// college, branch and semester all set.
	RequireComplete(ctx context.Context, userID string) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
}

func NewProfileService(profiles pgrepo.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Create(ctx context.Context, userID, email string, in ProfileInput) (*models.Profile, error) {
	const op = "ProfileService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if _, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "profile already exists, use update instead", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing profile", err)
	}

	now := time.Now().UTC()
	p := &models.Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProfileInput(p, in)

	if err := validateProfile(op, p); err != nil {
		return nil, err
	}

	if err := s.profiles.Insert(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	const op = "ProfileService.Update"

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found, create it first", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}

	applyProfileInput(p, in)
	p.UpdatedAt = time.Now().UTC()

	if err := validateProfile(op, p); err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return p, nil
}

func (s *profileService) Delete(ctx context.Context, userID string) error {
	const op = "ProfileService.Delete"

	if err := s.profiles.Delete(ctx, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete profile", err)
	}
	return nil
}

func (s *profileService) RequireComplete(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.RequireComplete"

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeForbidden, op,
				"complete your profile (college, branch, semester) to access resources", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}
	if !p.Complete() {
		return nil, utils.E(utils.CodeForbidden, op,
			"complete your profile (college, branch, semester) to access resources", nil)
	}
	return p, nil
}

func applyProfileInput(p *models.Profile, in ProfileInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.College != nil {
		p.College = strings.TrimSpace(*in.College)
	}
	if in.Branch != nil {
		p.Branch = strings.TrimSpace(*in.Branch)
	}
	if in.Semester != nil {
		p.Semester = *in.Semester
	}
	if in.Bio != nil {
		p.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.ProfilePicture != nil {
		p.ProfilePicture = *in.ProfilePicture
	}
}

func validateProfile(op string, p *models.Profile) error {
	switch {
	case len(p.Name) < 2 || len(p.Name) > 100:
		return utils.E(utils.CodeInvalidArgument, op, "name must be between 2 and 100 characters", nil)
	case len(p.College) < 2 || len(p.College) > 200:
		return utils.E(utils.CodeInvalidArgument, op, "college must be between 2 and 200 characters", nil)
	case len(p.Branch) < 2 || len(p.Branch) > 100:
		return utils.E(utils.CodeInvalidArgument, op, "branch must be between 2 and 100 characters", nil)
	case p.Semester < 1 || p.Semester > 12:
		return utils.E(utils.CodeInvalidArgument, op, "semester must be between 1 and 12", nil)
	case len(p.Bio) > 500:
		return utils.E(utils.CodeInvalidArgument, op, "bio must not exceed 500 characters", nil)
	}
	return nil
}
