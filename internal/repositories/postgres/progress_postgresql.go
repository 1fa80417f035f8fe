package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// GetOrCreate returns the (user, module) record, creating an empty one on
// first interaction. A concurrent create losing the race on the unique
// index falls back to reading the winner's row.
func (p *ProgressPostgreSQL) GetOrCreate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	var progress models.ModuleProgress
	err := p.db.WithContext(ctx).
		Where(models.ModuleProgress{UserID: userID, ModuleID: moduleID}).
		FirstOrCreate(&progress).Error
	if err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return p.Get(ctx, userID, moduleID)
		}
		return nil, err
	}
	return &progress, nil
}

// GetForUpdate loads the row under SELECT ... FOR UPDATE. Must run inside
// Repository.Transaction; the lock is released on commit or rollback.
func (p *ProgressPostgreSQL) GetForUpdate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	var progress models.ModuleProgress
	if err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	var progress models.ModuleProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) Save(ctx context.Context, progress *models.ModuleProgress) error {
	return p.db.WithContext(ctx).Save(progress).Error
}

func (p *ProgressPostgreSQL) ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]*models.ModuleProgress, error) {
	var records []*models.ModuleProgress
	err := p.db.WithContext(ctx).
		Joins("JOIN course_modules ON course_modules.id = module_progress.module_id").
		Where("module_progress.user_id = ? AND course_modules.course_id = ? AND course_modules.deleted_at IS NULL", userID, courseID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
