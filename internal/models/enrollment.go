package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseEnrollment links a user to a course. Unenrollment is a soft
// delete; the unique index is partial over active rows, so a user can
// re-enroll after unenrolling without tripping it.
type CourseEnrollment struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course,where:deleted_at IS NULL" validate:"required"`
	CourseID uint `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course,where:deleted_at IS NULL" validate:"required"`

	EnrolledAt time.Time `json:"enrolled_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
