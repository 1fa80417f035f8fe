package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "mcq"
	QuestionTrueFalse      QuestionType = "tf"
	QuestionText           QuestionType = "text"
)

type ModuleQuiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ModuleID    uint    `json:"module_id" gorm:"not null;index" validate:"required"`
	Name        string  `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Module    *CourseModule  `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

func (ModuleQuiz) TableName() string {
	return "module_quizzes"
}

type QuizQuestion struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index" validate:"required"`
	Type   QuestionType `json:"type" gorm:"default:mcq;size:20" validate:"omitempty,question_type"`
	Text   string       `json:"text" gorm:"type:text;not null" validate:"required,min=1"`

	// Allowed answers in display order; CorrectAnswer must be one of them.
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb;not null" validate:"required,min=1,dive,min=1"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"not null;size:255" validate:"required"`

	Marks    int `json:"marks" gorm:"default:1" validate:"min=1"`
	Position int `json:"position" gorm:"not null" validate:"min=0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Quiz *ModuleQuiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// HasOption reports whether answer is one of the question's allowed options.
func (q *QuizQuestion) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}
