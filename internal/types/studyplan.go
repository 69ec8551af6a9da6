package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StudyPlan is 1:1 with Course; content holds the full plan payload as
// produced (or substituted) by the generator.
type StudyPlan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"course_id"`
	Course    *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Content   datatypes.JSON `gorm:"column:content;type:jsonb" json:"content"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (StudyPlan) TableName() string { return "study_plan" }
