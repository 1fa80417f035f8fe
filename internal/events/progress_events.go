package events

import (
	"time"
)

// EventType represents different types of progress events
type EventType string

const (
	// Progress events
	EventTopicCompleted  EventType = "progress.topic_completed"
	EventQuizCompleted   EventType = "progress.quiz_completed"
	EventModuleCompleted EventType = "progress.module_completed"

	// Enrollment events
	EventUserEnrolled   EventType = "enrollment.created"
	EventUserUnenrolled EventType = "enrollment.removed"
)

// ProgressEvent is the base event structure published to the broker
type ProgressEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Progress event payloads

type TopicCompletedEvent struct {
	UserID        uint    `json:"user_id"`
	TopicID       uint    `json:"topic_id"`
	ModuleID      uint    `json:"module_id"`
	CourseID      uint    `json:"course_id"`
	ModulePercent float64 `json:"module_percent"`
}

type QuizCompletedEvent struct {
	UserID      uint      `json:"user_id"`
	ModuleID    uint      `json:"module_id"`
	CourseID    uint      `json:"course_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type ModuleCompletedEvent struct {
	UserID        uint      `json:"user_id"`
	ModuleID      uint      `json:"module_id"`
	CourseID      uint      `json:"course_id"`
	CompletedAt   time.Time `json:"completed_at"`
	ModulePercent float64   `json:"module_percent"`
}

type EnrollmentEvent struct {
	UserID   uint      `json:"user_id"`
	CourseID uint      `json:"course_id"`
	At       time.Time `json:"at"`
}
