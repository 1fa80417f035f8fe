package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizSubmission is a user's recorded answer to one quiz question.
// At most one active row exists per (user, question); a resubmission
// overwrites the existing row, enforced by the composite unique index.
type QuizSubmission struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	UserID     uint `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_user_question" validate:"required"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_submission_user_question" validate:"required"`

	Answer    string `json:"answer" gorm:"not null;size:255" validate:"required"`
	IsCorrect bool   `json:"is_correct" gorm:"default:false;index"`

	AnsweredAt time.Time      `json:"answered_at" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	User     *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Question *QuizQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}
