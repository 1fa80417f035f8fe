package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kfc-academy/learning-service/internal/events"
	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// EnrollmentService manages course membership.
type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID uint) (*models.CourseEnrollment, error)
	Unenroll(ctx context.Context, userID, courseID uint) error
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
	ListUserEnrollments(ctx context.Context, userID uint) ([]*models.CourseEnrollment, error)
	ListCourseEnrollments(ctx context.Context, courseID uint) ([]*models.CourseEnrollment, error)
}

type enrollmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEnrollmentService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*models.CourseEnrollment, error) {
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &models.CourseEnrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		// Two concurrent enrolls race past the check; the unique index
		// catches the loser.
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.publishEvent(ctx, events.NewProgressEvent(events.EventUserEnrolled, events.EnrollmentEvent{
		UserID:   userID,
		CourseID: courseID,
		At:       enrollment.EnrolledAt,
	}))

	s.logger.Info("User enrolled", "user_id", userID, "course_id", courseID)
	return enrollment, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, userID, courseID uint) error {
	enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if err := s.repo.Enrollment().Unenroll(ctx, userID, courseID); err != nil {
		return fmt.Errorf("failed to unenroll: %w", err)
	}

	s.publishEvent(ctx, events.NewProgressEvent(events.EventUserUnenrolled, events.EnrollmentEvent{
		UserID:   userID,
		CourseID: courseID,
		At:       time.Now().UTC(),
	}))

	s.logger.Info("User unenrolled", "user_id", userID, "course_id", courseID)
	return nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	return s.repo.Enrollment().IsEnrolled(ctx, userID, courseID)
}

func (s *enrollmentService) ListUserEnrollments(ctx context.Context, userID uint) ([]*models.CourseEnrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) ListCourseEnrollments(ctx context.Context, courseID uint) ([]*models.CourseEnrollment, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) publishEvent(ctx context.Context, event *events.ProgressEvent) {
	if err := s.publisher.PublishProgressEvent(ctx, event); err != nil {
		s.logger.Warn("enrollment event publish failed", "event_type", event.Type, "error", err)
	}
}

// requireEnrollment gates course-scoped operations on active membership.
func requireEnrollment(ctx context.Context, repo repositories.Repository, userID, courseID uint) error {
	enrolled, err := repo.Enrollment().IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}
