package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notehub/notehub/internal/cache"
	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/policy"
	pgrepo "github.com/notehub/notehub/internal/repositories/postgres"
	"github.com/notehub/notehub/internal/utils"
)

const maxCommentLen = 500

// ReviewSummary is the denormalized aggregate written back to the resource.
type ReviewSummary struct {
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int64   `json:"review_count"`
}

type ReviewService interface {
	List(ctx context.Context, resourceID string) ([]models.Review, error)
	Submit(ctx context.Context, reviewerID, resourceID string, rating int, comment string) (*ReviewSummary, error)
}

type reviewService struct {
	reviews   pgrepo.ReviewRepository
	resources pgrepo.ResourceRepository
	profiles  pgrepo.ProfileRepository
	cache     cache.Cache
}

func NewReviewService(
	reviews pgrepo.ReviewRepository,
	resources pgrepo.ResourceRepository,
	profiles pgrepo.ProfileRepository,
	c cache.Cache,
) ReviewService {
	return &reviewService{reviews: reviews, resources: resources, profiles: profiles, cache: c}
}

func (s *reviewService) List(ctx context.Context, resourceID string) ([]models.Review, error) {
	const op = "ReviewService.List"

	out, err := s.reviews.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reviews", err)
	}
	return out, nil
}

func (s *reviewService) Submit(ctx context.Context, reviewerID, resourceID string, rating int, comment string) (*ReviewSummary, error) {
	const op = "ReviewService.Submit"

	if rating < 1 || rating > 5 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLen {
		return nil, utils.E(utils.CodeInvalidArgument, op, "comment must not exceed 500 characters", nil)
	}

	reviewer, err := s.profiles.GetByUserID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeForbidden, op,
				"complete your profile (college, branch, semester) to rate resources", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load reviewer profile", err)
	}

	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resource", err)
	}

	if d := policy.CanAccess(reviewer, res, policy.ActionRate); !d.Allowed {
		return nil, utils.E(utils.CodeForbidden, op, d.Reason, nil)
	}

	now := time.Now().UTC()
	rev := &models.Review{
		ID:           uuid.NewString(),
		ResourceID:   resourceID,
		ReviewerID:   reviewerID,
		ReviewerName: reviewer.Name,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	avg, count, err := s.reviews.SubmitAndRecount(ctx, rev)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to submit review", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, resourceCacheKey(resourceID))
	}
	return &ReviewSummary{AvgRating: avg, ReviewCount: count}, nil
}
