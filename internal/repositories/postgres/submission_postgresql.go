package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

// Upsert inserts or overwrites the (user, question) submission in one
// statement. INSERT ... ON CONFLICT makes concurrent submits for the same
// pair linearize on the unique index instead of racing in the
// application.
func (s *SubmissionPostgreSQL) Upsert(ctx context.Context, submission *models.QuizSubmission) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer", "is_correct", "answered_at", "updated_at",
			}),
		}).
		Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByUserAndQuestion(ctx context.Context, userID, questionID uint) (*models.QuizSubmission, error) {
	var submission models.QuizSubmission
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]*models.QuizSubmission, error) {
	var submissions []*models.QuizSubmission
	if err := s.db.WithContext(ctx).
		Joins("JOIN quiz_questions ON quiz_questions.id = quiz_submissions.question_id").
		Where("quiz_submissions.user_id = ? AND quiz_questions.quiz_id = ? AND quiz_questions.deleted_at IS NULL", userID, quizID).
		Preload("Question").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// CountByUserAndModule counts the module's questions this user has an
// active submission for. The unique (user_id, question_id) index makes
// the row count equal to the distinct-question count.
func (s *SubmissionPostgreSQL) CountByUserAndModule(ctx context.Context, userID, moduleID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.QuizSubmission{}).
		Joins("JOIN quiz_questions ON quiz_questions.id = quiz_submissions.question_id").
		Joins("JOIN module_quizzes ON module_quizzes.id = quiz_questions.quiz_id").
		Where("quiz_submissions.user_id = ? AND module_quizzes.module_id = ?", userID, moduleID).
		Where("quiz_questions.deleted_at IS NULL AND module_quizzes.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
