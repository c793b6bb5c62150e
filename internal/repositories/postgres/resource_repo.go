package postgres

import (
	"context"
	"errors"

	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/utils"
	"gorm.io/gorm"
)

// ResourceFilter is the query-engine input. Zero values mean "no filter".
type ResourceFilter struct {
	OwnerID string // restrict to one owner; skips the visibility predicate

	// ViewerCollege feeds the visibility predicate when OwnerID is empty:
	// Public rows, plus Private rows from the same college.
	ViewerCollege string

	Type     models.ResourceType
	Semester int
	Subject  string // substring, case-insensitive
	Branch   string
	Year     int
	Privacy  models.Privacy
	Search   string // matches title, subject, branch or any tag
	Sort     string // latest | popular | rated
}

type ResourceRepository interface {
	Insert(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	Save(ctx context.Context, res *models.Resource) error
	List(ctx context.Context, f ResourceFilter) ([]models.Resource, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error

	// DeleteWithReviews removes the row and all its reviews in one
	// transaction. Blob release is the caller's job.
	DeleteWithReviews(ctx context.Context, id string) error
}

type resourceRepo struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Insert(ctx context.Context, res *models.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var res models.Resource
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &res, err
}

func (r *resourceRepo) Save(ctx context.Context, res *models.Resource) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *resourceRepo) List(ctx context.Context, f ResourceFilter) ([]models.Resource, error) {
	q := r.db.WithContext(ctx).Model(&models.Resource{})

	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
		if f.Privacy != "" {
			q = q.Where("privacy = ?", f.Privacy)
		}
	} else {
		switch f.Privacy {
		case models.PrivacyPublic:
			q = q.Where("privacy = ?", models.PrivacyPublic)
		case models.PrivacyPrivate:
			q = q.Where("privacy = ? AND lower(college) = lower(?)",
				models.PrivacyPrivate, f.ViewerCollege)
		default:
			q = q.Where("privacy = ? OR (privacy = ? AND lower(college) = lower(?))",
				models.PrivacyPublic, models.PrivacyPrivate, f.ViewerCollege)
		}
	}

	if f.Type != "" {
		q = q.Where("resource_type = ?", f.Type)
	}
	if f.Semester != 0 {
		q = q.Where("semester = ?", f.Semester)
	}
	if f.Branch != "" {
		q = q.Where("branch = ?", f.Branch)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Subject != "" {
		q = q.Where("subject ILIKE ?", "%"+f.Subject+"%")
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where(
			"title ILIKE ? OR subject ILIKE ? OR branch ILIKE ? OR array_to_string(tags, ' ') ILIKE ?",
			term, term, term, term,
		)
	}

	var out []models.Resource
	err := q.Order(orderClause(f.Sort)).Find(&out).Error
	return out, err
}

// orderClause yields a total order for every sort mode; the trailing id
// tie-break keeps results deterministic and paginate-safe.
func orderClause(sort string) string {
	switch sort {
	case "popular":
		return "downloads DESC, views DESC, id ASC"
	case "rated":
		return "avg_rating DESC, review_count DESC, id ASC"
	default: // latest
		return "created_at DESC, id ASC"
	}
}

func (r *resourceRepo) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, id, "views")
}

func (r *resourceRepo) IncrementDownloads(ctx context.Context, id string) error {
	return r.increment(ctx, id, "downloads")
}

// increment is a native read-modify-write in SQL, so concurrent hits never
// lose updates.
func (r *resourceRepo) increment(ctx context.Context, id, column string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resourceRepo) DeleteWithReviews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Resource{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return nil
	})
}
