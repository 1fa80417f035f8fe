package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.QuizQuestion) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := q.db.WithContext(ctx).
		Preload("Quiz").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.QuizQuestion) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.QuizQuestion{}, id).Error
}

func (q *QuestionPostgreSQL) ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByModule counts active questions across all quizzes belonging to
// the module. Soft-deleted quizzes and questions are excluded.
func (q *QuestionPostgreSQL) CountByModule(ctx context.Context, moduleID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.QuizQuestion{}).
		Joins("JOIN module_quizzes ON module_quizzes.id = quiz_questions.quiz_id").
		Where("module_quizzes.module_id = ? AND module_quizzes.deleted_at IS NULL", moduleID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
