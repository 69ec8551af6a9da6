package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Code         string    `gorm:"column:code;not null" json:"code"`
	Term         string    `gorm:"column:term;not null" json:"term"`
	Slug         string    `gorm:"column:slug;not null" json:"slug"`
	Syllabus     string    `gorm:"column:syllabus;type:text" json:"syllabus,omitempty"`
	SessionIndex int       `gorm:"column:session_index;not null;default:0" json:"session_index"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
