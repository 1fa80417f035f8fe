package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type DiscussionPostgreSQL struct {
	db *gorm.DB
}

func NewDiscussionPostgreSQL(db *gorm.DB) repositories.DiscussionRepository {
	return &DiscussionPostgreSQL{db: db}
}

func (d *DiscussionPostgreSQL) Create(ctx context.Context, discussion *models.CourseDiscussion) error {
	return d.db.WithContext(ctx).Create(discussion).Error
}

func (d *DiscussionPostgreSQL) ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]*models.CourseDiscussion, int64, error) {
	var discussions []*models.CourseDiscussion
	var total int64

	query := d.db.WithContext(ctx).
		Model(&models.CourseDiscussion{}).
		Where("course_id = ?", courseID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Preload("User").Find(&discussions).Error; err != nil {
		return nil, 0, err
	}
	return discussions, total, nil
}

func (d *DiscussionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Delete(&models.CourseDiscussion{}, id).Error
}
