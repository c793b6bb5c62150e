package postgres

import (
	"context"
	"errors"

	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	ListByResource(ctx context.Context, resourceID string) ([]models.Review, error)

	// SubmitAndRecount upserts the (resource, reviewer) row and recomputes
	// the resource's denormalized avg_rating/review_count in the same
	// transaction, under a FOR UPDATE lock on the resource row so two
	// concurrent submissions for one resource serialize.
	SubmitAndRecount(ctx context.Context, rev *models.Review) (avg float64, count int64, err error)
}

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) ListByResource(ctx context.Context, resourceID string) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("updated_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *reviewRepo) SubmitAndRecount(ctx context.Context, rev *models.Review) (float64, int64, error) {
	var (
		avg   float64
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Resource
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", rev.ResourceID).
			Take(&res).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "resource_id"}, {Name: "reviewer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reviewer_name", "rating", "comment", "updated_at",
			}),
		}).Create(rev).Error; err != nil {
			return err
		}

		row := tx.Model(&models.Review{}).
			Where("resource_id = ?", rev.ResourceID).
			Select("COALESCE(AVG(rating), 0), COUNT(*)").
			Row()
		if err := row.Scan(&avg, &count); err != nil {
			return err
		}

		return tx.Model(&models.Resource{}).
			Where("id = ?", rev.ResourceID).
			Updates(map[string]any{
				"avg_rating":   avg,
				"review_count": count,
			}).Error
	})
	return avg, count, err
}
