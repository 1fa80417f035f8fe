package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m *ModulePostgreSQL) Create(ctx context.Context, module *models.CourseModule) error {
	return m.db.WithContext(ctx).Create(module).Error
}

func (m *ModulePostgreSQL) GetByID(ctx context.Context, id uint) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := m.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (m *ModulePostgreSQL) Update(ctx context.Context, module *models.CourseModule) error {
	return m.db.WithContext(ctx).Save(module).Error
}

func (m *ModulePostgreSQL) Delete(ctx context.Context, id uint) error {
	return m.db.WithContext(ctx).Delete(&models.CourseModule{}, id).Error
}

func (m *ModulePostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	var modules []*models.CourseModule
	if err := m.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}
