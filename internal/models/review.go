package models

import "time"

// Review is one (rating, comment) per (resource, reviewer); a resubmission
// updates the existing row.
type Review struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ResourceID string `gorm:"column:resource_id;type:uuid;uniqueIndex:idx_reviews_resource_reviewer" json:"resource_id"`
	ReviewerID string `gorm:"column:reviewer_id;type:uuid;uniqueIndex:idx_reviews_resource_reviewer" json:"reviewer_id"`

	// Reviewer display name, captured from the profile at submit time.
	ReviewerName string `gorm:"column:reviewer_name;type:text" json:"reviewer_name"`

	Rating  int    `gorm:"column:rating;type:integer" json:"rating"`
	Comment string `gorm:"column:comment;type:text" json:"comment"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }
