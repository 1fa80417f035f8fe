package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Progress weighting policy: topic completion carries 70% of a module's
// percentage, quiz completion the remaining 30%.
const (
	TopicProgressWeight = 0.7
	QuizProgressWeight  = 0.3
)

// ModuleProgress is the per-(user, module) completion record. It is
// created lazily on first interaction and never deleted. QuizCompleted is
// a one-way latch: once true it is never cleared, even if the module's
// question count later shrinks.
type ModuleProgress struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_module" validate:"required"`
	ModuleID uint `json:"module_id" gorm:"not null;uniqueIndex:idx_progress_user_module" validate:"required"`

	// Identifiers of this module's topics the user has finished.
	CompletedTopicIDs datatypes.JSONSlice[uint] `json:"completed_topic_ids" gorm:"type:jsonb"`

	QuizCompleted bool       `json:"quiz_completed" gorm:"default:false;index"`
	CompletedAt   *time.Time `json:"completed_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Module *CourseModule `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// HasCompletedTopic reports whether topicID is already recorded.
func (p *ModuleProgress) HasCompletedTopic(topicID uint) bool {
	for _, id := range p.CompletedTopicIDs {
		if id == topicID {
			return true
		}
	}
	return false
}

// AddCompletedTopic records topicID if absent and reports whether the set
// changed. Idempotent.
func (p *ModuleProgress) AddCompletedTopic(topicID uint) bool {
	if p.HasCompletedTopic(topicID) {
		return false
	}
	p.CompletedTopicIDs = append(p.CompletedTopicIDs, topicID)
	return true
}

// Percent computes the weighted progress percentage for this record given
// the module's current topic count. Result is in [0, 100], rounded to two
// decimal places.
func (p *ModuleProgress) Percent(totalTopics int) float64 {
	topicFraction := 0.0
	if totalTopics > 0 {
		topicFraction = float64(len(p.CompletedTopicIDs)) / float64(totalTopics)
	}

	quizFraction := 0.0
	if p.QuizCompleted {
		quizFraction = 1.0
	}

	return RoundPercent((topicFraction*TopicProgressWeight + quizFraction*QuizProgressWeight) * 100)
}

// RoundPercent rounds a percentage to two decimal places.
func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
