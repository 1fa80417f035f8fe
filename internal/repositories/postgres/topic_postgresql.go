package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t *TopicPostgreSQL) Create(ctx context.Context, topic *models.ModuleTopic) error {
	return t.db.WithContext(ctx).Create(topic).Error
}

func (t *TopicPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ModuleTopic, error) {
	var topic models.ModuleTopic
	if err := t.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) GetByIDWithModule(ctx context.Context, id uint) (*models.ModuleTopic, error) {
	var topic models.ModuleTopic
	if err := t.db.WithContext(ctx).
		Preload("Module").
		First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) Update(ctx context.Context, topic *models.ModuleTopic) error {
	return t.db.WithContext(ctx).Save(topic).Error
}

func (t *TopicPostgreSQL) Delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Delete(&models.ModuleTopic{}, id).Error
}

func (t *TopicPostgreSQL) ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleTopic, error) {
	var topics []*models.ModuleTopic
	if err := t.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (t *TopicPostgreSQL) CountByModule(ctx context.Context, moduleID uint) (int64, error) {
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&models.ModuleTopic{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
