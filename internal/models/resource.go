package models

import (
	"time"

	"github.com/lib/pq"
)

type ResourceType string

const (
	TypeNotes          ResourceType = "Notes"
	TypeQuestionPapers ResourceType = "Question Papers"
	TypeSolutions      ResourceType = "Solutions"
	TypeProjectReports ResourceType = "Project Reports"
	TypeStudyMaterial  ResourceType = "Study Material"
)

func ValidResourceType(t ResourceType) bool {
	switch t {
	case TypeNotes, TypeQuestionPapers, TypeSolutions, TypeProjectReports, TypeStudyMaterial:
		return true
	}
	return false
}

type Privacy string

const (
	PrivacyPublic  Privacy = "Public"
	PrivacyPrivate Privacy = "Private"
)

type Resource struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID string `gorm:"column:owner_id;type:uuid;index" json:"owner_id"`

	Title   string `gorm:"column:title;type:text" json:"title"`
	Subject string `gorm:"column:subject;type:text" json:"subject"`

	// Owner's branch/college, copied from the profile at upload time.
	// College drives the same-college predicate for private rows.
	Branch  string `gorm:"column:branch;type:text" json:"branch"`
	College string `gorm:"column:college;type:text;index" json:"college"`

	Semester     int            `gorm:"column:semester;type:integer" json:"semester"`
	ResourceType ResourceType   `gorm:"column:resource_type;type:text" json:"resource_type"`
	Year         int            `gorm:"column:year;type:integer" json:"year"`
	Description  string         `gorm:"column:description;type:text" json:"description"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	Privacy      Privacy        `gorm:"column:privacy;type:text;index" json:"privacy"`

	Views       int64   `gorm:"column:views;default:0" json:"views"`
	Downloads   int64   `gorm:"column:downloads;default:0" json:"downloads"`
	AvgRating   float64 `gorm:"column:avg_rating;default:0" json:"avg_rating"`
	ReviewCount int64   `gorm:"column:review_count;default:0" json:"review_count"`

	// FileHandle is the object name in the blob store, immutable after upload.
	FileHandle string `gorm:"column:file_handle;type:text" json:"-"`
	FileName   string `gorm:"column:file_name;type:text" json:"file_name"`
	FileSize   int64  `gorm:"column:file_size;type:bigint" json:"file_size"`
	FileType   string `gorm:"column:file_type;type:text" json:"file_type"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Resource) TableName() string { return "resources" }
