package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseDiscussion struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index" validate:"required"`
	UserID   uint   `json:"user_id" gorm:"not null;index" validate:"required"`
	Comment  string `json:"comment" gorm:"type:text;not null" validate:"required,min=1,max=5000"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (CourseDiscussion) TableName() string {
	return "course_discussions"
}
