package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "Draft"
	CoursePublished CourseStatus = "Published"
	CourseArchived  CourseStatus = "Archived"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Category    *string `json:"category" gorm:"size:200;index"`

	Tags           datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`
	ExpertiseLevel *string                     `json:"expertise_level" gorm:"size:100"`
	Prerequisites  datatypes.JSONSlice[string] `json:"prerequisites" gorm:"type:jsonb"`
	Objectives     datatypes.JSONSlice[string] `json:"objectives" gorm:"type:jsonb"`

	IsPaid     bool         `json:"is_paid" gorm:"default:false;index"`
	IsFeatured bool         `json:"is_featured" gorm:"default:false;index"`
	Status     CourseStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`

	InstructorID *uint `json:"instructor_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Modules    []CourseModule `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
	Instructor *User          `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`

	// Computed fields (not stored)
	TotalDuration string  `json:"total_duration,omitempty" gorm:"-"`
	Progress      float64 `json:"progress,omitempty" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// FormatDurationLabel renders a total content duration as a compact label
// built from whole weeks, days and hours. Components that are zero are
// omitted; a zero or negative total renders as "0h".
func FormatDurationLabel(total time.Duration) string {
	totalSeconds := int64(total.Seconds())
	if totalSeconds <= 0 {
		return "0h"
	}

	weeks := totalSeconds / (7 * 24 * 3600)
	remainder := totalSeconds % (7 * 24 * 3600)
	days := remainder / (24 * 3600)
	remainder = remainder % (24 * 3600)
	hours := remainder / 3600

	var parts []string
	if weeks > 0 {
		parts = append(parts, fmt.Sprintf("%dw", weeks))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}

	if len(parts) == 0 {
		// Sub-hour totals round down to nothing; keep the label non-empty.
		return "0h"
	}
	return strings.Join(parts, " ")
}
