package model

import "time"

const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"

	ExperienceJunior = "junior"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

type Job struct {
	ID                  string      `gorm:"primaryKey;size:16" json:"id"`
	Slug                string      `gorm:"index;size:255" json:"slug"`
	Title               string      `gorm:"size:200;not null" json:"title"`
	Company             string      `gorm:"size:200;not null" json:"company"`
	Salary              string      `gorm:"size:100;not null" json:"salary"`
	Location            string      `gorm:"size:200;not null;index" json:"location"`
	Description         string      `gorm:"not null" json:"description"`
	JobType             string      `gorm:"size:16;not null;index" json:"jobType"`
	ExperienceLevel     string      `gorm:"size:16;not null;index" json:"experienceLevel"`
	Industry            string      `gorm:"size:100;not null;index" json:"industry"`
	ApplicationDeadline time.Time   `gorm:"not null" json:"applicationDeadline"`
	RequiredSkills      StringSlice `json:"requiredSkills"`
	CreatedBy           string      `gorm:"size:16;not null;index" json:"createdBy"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`

	Creator      *UserRef         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Applications []JobApplication `gorm:"foreignKey:JobID" json:"applicants"`
}

// JobApplication is a single row shared by a job's applicant set and
// a user's applied list
type JobApplication struct {
	JobID     string    `gorm:"primaryKey;size:16" json:"-"`
	UserID    string    `gorm:"primaryKey;size:16;index" json:"userId"`
	CreatedAt time.Time `json:"appliedAt"`

	User *UserRef `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
