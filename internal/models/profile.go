package models

import "time"

type Profile struct {
	UserID  string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Email   string `gorm:"column:email;type:text" json:"email"`
	Name    string `gorm:"column:name;type:text" json:"name"`
	College string `gorm:"column:college;type:text" json:"college"`
	Branch  string `gorm:"column:branch;type:text" json:"branch"`

	// 1..12, zero means not set
	Semester int `gorm:"column:semester;type:integer" json:"semester"`

	Bio            string `gorm:"column:bio;type:text" json:"bio"`
	ProfilePicture string `gorm:"column:profile_picture;type:text" json:"profile_picture"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Complete reports whether the fields required for catalog access are set.
// Browsing and uploading are gated on this.
func (p *Profile) Complete() bool {
	return p != nil && p.College != "" && p.Branch != "" && p.Semester >= 1 && p.Semester <= 12
}
