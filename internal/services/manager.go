package services

import (
	"log/slog"

	"github.com/kfc-academy/learning-service/internal/cache"
	"github.com/kfc-academy/learning-service/internal/events"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// Manager wires the service layer together so transports depend on a
// single constructor argument.
type Manager struct {
	Course     CourseService
	Progress   ProgressService
	Submission SubmissionService
	Enrollment EnrollmentService
	Discussion DiscussionService
	Report     ReportService
}

func NewManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	validator RequestValidator,
	logger *slog.Logger,
) *Manager {
	progress := NewProgressService(repo, cacheService, publisher, logger)

	return &Manager{
		Course:     NewCourseService(repo, progress, validator, logger),
		Progress:   progress,
		Submission: NewSubmissionService(repo, progress, validator, logger),
		Enrollment: NewEnrollmentService(repo, publisher, logger),
		Discussion: NewDiscussionService(repo, validator, logger),
		Report:     NewReportService(repo, progress, logger),
	}
}
