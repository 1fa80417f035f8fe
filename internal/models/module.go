package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseModule struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CourseID    uint    `json:"course_id" gorm:"not null;index:idx_module_course_position" validate:"required"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Position    int     `json:"position" gorm:"not null;index:idx_module_course_position" validate:"min=0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course  *Course       `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Topics  []ModuleTopic `json:"topics,omitempty" gorm:"foreignKey:ModuleID"`
	Quizzes []ModuleQuiz  `json:"quizzes,omitempty" gorm:"foreignKey:ModuleID"`

	// Computed fields (not stored)
	Progress float64 `json:"progress,omitempty" gorm:"-"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type ModuleTopic struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ModuleID    uint    `json:"module_id" gorm:"not null;index:idx_topic_module_position" validate:"required"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Position    int     `json:"position" gorm:"not null;index:idx_topic_module_position" validate:"min=0"`

	// Content attachments
	Files             datatypes.JSONSlice[string] `json:"files" gorm:"type:jsonb"`
	FilesDescription  *string                     `json:"files_description" gorm:"type:text"`
	Videos            datatypes.JSONSlice[string] `json:"videos" gorm:"type:jsonb"`
	VideosDescription *string                     `json:"videos_description" gorm:"type:text"`

	// Declared study time in seconds; zero means the topic declares none.
	DurationSeconds int64 `json:"duration_seconds" gorm:"default:0" validate:"min=0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Module *CourseModule `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
}

func (ModuleTopic) TableName() string {
	return "module_topics"
}

// Duration returns the declared study time as a time.Duration.
func (t *ModuleTopic) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}
