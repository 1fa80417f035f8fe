package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	return e.db.WithContext(ctx).Create(enrollment).Error
}

func (e *EnrollmentPostgreSQL) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) Unenroll(ctx context.Context, userID, courseID uint) error {
	result := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.CourseEnrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, userID uint) ([]*models.CourseEnrollment, error) {
	var enrollments []*models.CourseEnrollment
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Course").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseEnrollment, error) {
	var enrollments []*models.CourseEnrollment
	if err := e.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("User").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
