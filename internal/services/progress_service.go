package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kfc-academy/learning-service/internal/cache"
	"github.com/kfc-academy/learning-service/internal/events"
	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// maxConflictRetries bounds how often a conflicted read-modify-write on a
// progress row is repeated before giving up. The operations are
// idempotent at the business level, so a full retry is always safe.
const maxConflictRetries = 3

// ProgressService owns the per-(user, module) completion records and the
// derived course-level aggregates.
type ProgressService interface {
	MarkTopicComplete(ctx context.Context, userID, topicID uint) (*TopicCompletionResult, error)

	// RecomputeQuizCompletion re-derives the quiz-completed latch from the
	// current submission counts. The latch is one-way: once set it is
	// never cleared, even if the module's question count later shrinks.
	RecomputeQuizCompletion(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error)

	GetModuleProgress(ctx context.Context, userID, moduleID uint) (*ModuleProgressResult, error)
	GetCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgressResult, error)
	GetCourseDuration(ctx context.Context, courseID uint) (string, error)

	// InvalidateCourseDuration drops the cached duration label, called by
	// the content layer when a topic's duration or a course is edited.
	InvalidateCourseDuration(ctx context.Context, courseID uint)
}

type TopicCompletionResult struct {
	TopicID        uint    `json:"topic_id"`
	TopicName      string  `json:"topic_name"`
	ModuleID       uint    `json:"module_id"`
	ModuleProgress float64 `json:"module_progress"`
}

type ModuleProgressResult struct {
	ModuleID        uint       `json:"module_id"`
	ModuleName      string     `json:"module_name"`
	CompletedTopics []uint     `json:"completed_topics"`
	TotalTopics     int        `json:"total_topics"`
	QuizCompleted   bool       `json:"quiz_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ProgressPercent float64    `json:"progress_percent"`
}

type CourseProgressResult struct {
	CourseID        uint                   `json:"course_id"`
	CourseTitle     string                 `json:"course_title"`
	ProgressPercent float64                `json:"progress_percent"`
	Modules         []ModuleProgressResult `json:"modules"`
}

type progressService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewProgressService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== TOPIC COMPLETION =====

func (s *progressService) MarkTopicComplete(ctx context.Context, userID, topicID uint) (*TopicCompletionResult, error) {
	topic, err := s.repo.Topic().GetByIDWithModule(ctx, topicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	if topic.Module == nil {
		return nil, ErrModuleNotFound
	}
	module := topic.Module

	if err := requireEnrollment(ctx, s.repo, userID, module.CourseID); err != nil {
		return nil, err
	}

	// Ensure the row exists before locking it inside the transaction.
	if _, err := s.repo.Progress().GetOrCreate(ctx, userID, module.ID); err != nil {
		return nil, fmt.Errorf("failed to get or create progress: %w", err)
	}

	var changed bool
	err = s.withConflictRetry(ctx, "mark_topic_complete", func() error {
		return s.repo.Transaction(ctx, func(tx repositories.Repository) error {
			progress, err := tx.Progress().GetForUpdate(ctx, userID, module.ID)
			if err != nil {
				return fmt.Errorf("failed to lock progress row: %w", err)
			}

			changed = progress.AddCompletedTopic(topic.ID)
			if !changed {
				// Already recorded; idempotent no-op.
				return nil
			}
			return tx.Progress().Save(ctx, progress)
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.invalidate(ctx, cache.CourseProgressKey(module.CourseID, userID))
	}

	percent, err := s.moduleProgressPercent(ctx, userID, module.ID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, events.NewProgressEvent(events.EventTopicCompleted, events.TopicCompletedEvent{
			UserID:        userID,
			TopicID:       topic.ID,
			ModuleID:      module.ID,
			CourseID:      module.CourseID,
			ModulePercent: percent,
		}))
	}

	s.logger.Info("Topic marked complete",
		"user_id", userID,
		"topic_id", topic.ID,
		"module_id", module.ID,
		"module_progress", percent)

	return &TopicCompletionResult{
		TopicID:        topic.ID,
		TopicName:      topic.Name,
		ModuleID:       module.ID,
		ModuleProgress: percent,
	}, nil
}

// ===== QUIZ COMPLETION LATCH =====

func (s *progressService) RecomputeQuizCompletion(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	module, err := s.repo.Module().GetByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	total, err := s.repo.Question().CountByModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	answered, err := s.repo.Submission().CountByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	if _, err := s.repo.Progress().GetOrCreate(ctx, userID, moduleID); err != nil {
		return nil, fmt.Errorf("failed to get or create progress: %w", err)
	}

	var result *models.ModuleProgress
	var latched bool
	err = s.withConflictRetry(ctx, "recompute_quiz_completion", func() error {
		latched = false
		return s.repo.Transaction(ctx, func(tx repositories.Repository) error {
			progress, err := tx.Progress().GetForUpdate(ctx, userID, moduleID)
			if err != nil {
				return fmt.Errorf("failed to lock progress row: %w", err)
			}

			// One-way transition: Incomplete -> Completed. Never back,
			// so a question soft-deleted later cannot un-complete a quiz.
			if !progress.QuizCompleted && total > 0 && answered >= total {
				progress.QuizCompleted = true
				if progress.CompletedAt == nil {
					now := time.Now().UTC()
					progress.CompletedAt = &now
				}
				if err := tx.Progress().Save(ctx, progress); err != nil {
					return err
				}
				latched = true
			}

			result = progress
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if latched {
		s.invalidate(ctx, cache.CourseProgressKey(module.CourseID, userID))

		s.publish(ctx, events.NewProgressEvent(events.EventQuizCompleted, events.QuizCompletedEvent{
			UserID:      userID,
			ModuleID:    moduleID,
			CourseID:    module.CourseID,
			CompletedAt: *result.CompletedAt,
		}))

		if percent, err := s.moduleProgressPercent(ctx, userID, moduleID); err == nil && percent >= 100 {
			s.publish(ctx, events.NewProgressEvent(events.EventModuleCompleted, events.ModuleCompletedEvent{
				UserID:        userID,
				ModuleID:      moduleID,
				CourseID:      module.CourseID,
				CompletedAt:   *result.CompletedAt,
				ModulePercent: percent,
			}))
		}

		s.logger.Info("Quiz completion latched",
			"user_id", userID,
			"module_id", moduleID,
			"answered", answered,
			"total", total)
	}

	return result, nil
}

// ===== READS =====

func (s *progressService) GetModuleProgress(ctx context.Context, userID, moduleID uint) (*ModuleProgressResult, error) {
	module, err := s.repo.Module().GetByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return s.buildModuleResult(ctx, userID, module)
}

func (s *progressService) GetCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgressResult, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := requireEnrollment(ctx, s.repo, userID, courseID); err != nil {
		return nil, err
	}

	modules, err := s.repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	result := &CourseProgressResult{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Modules:     make([]ModuleProgressResult, 0, len(modules)),
	}

	for _, module := range modules {
		moduleResult, err := s.buildModuleResult(ctx, userID, module)
		if err != nil {
			return nil, err
		}
		result.Modules = append(result.Modules, *moduleResult)
	}

	// The overall percentage is memoized; progress changes often, so the
	// TTL is short and every progress save invalidates the entry.
	key := cache.CourseProgressKey(courseID, userID)
	var cached float64
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		result.ProgressPercent = cached
		return result, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("course progress cache read failed, recomputing", "error", err)
	}

	result.ProgressPercent = averageModulePercent(result.Modules)

	if err := s.cache.Set(ctx, key, result.ProgressPercent, cache.CourseProgressTTL); err != nil {
		s.logger.Warn("course progress cache write failed", "error", err)
	}

	return result, nil
}

func (s *progressService) GetCourseDuration(ctx context.Context, courseID uint) (string, error) {
	key := cache.CourseDurationKey(courseID)
	var cached string
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("course duration cache read failed, recomputing", "error", err)
	}

	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrCourseNotFound
		}
		return "", fmt.Errorf("failed to get course: %w", err)
	}

	totalSeconds, err := s.repo.Course().TotalDurationSeconds(ctx, courseID)
	if err != nil {
		return "", fmt.Errorf("failed to sum course duration: %w", err)
	}

	label := models.FormatDurationLabel(time.Duration(totalSeconds) * time.Second)

	if err := s.cache.Set(ctx, key, label, cache.CourseDurationTTL); err != nil {
		s.logger.Warn("course duration cache write failed", "error", err)
	}

	return label, nil
}

func (s *progressService) InvalidateCourseDuration(ctx context.Context, courseID uint) {
	s.invalidate(ctx, cache.CourseDurationKey(courseID))
}

// ===== INTERNAL HELPERS =====

func (s *progressService) buildModuleResult(ctx context.Context, userID uint, module *models.CourseModule) (*ModuleProgressResult, error) {
	totalTopics, err := s.repo.Topic().CountByModule(ctx, module.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}

	result := &ModuleProgressResult{
		ModuleID:        module.ID,
		ModuleName:      module.Name,
		CompletedTopics: []uint{},
		TotalTopics:     int(totalTopics),
	}

	progress, err := s.repo.Progress().Get(ctx, userID, module.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// No interaction yet; progress is zero.
			return result, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	result.CompletedTopics = append(result.CompletedTopics, progress.CompletedTopicIDs...)
	result.QuizCompleted = progress.QuizCompleted
	result.CompletedAt = progress.CompletedAt
	result.ProgressPercent = progress.Percent(int(totalTopics))
	return result, nil
}

func (s *progressService) moduleProgressPercent(ctx context.Context, userID, moduleID uint) (float64, error) {
	totalTopics, err := s.repo.Topic().CountByModule(ctx, moduleID)
	if err != nil {
		return 0, fmt.Errorf("failed to count topics: %w", err)
	}
	progress, err := s.repo.Progress().Get(ctx, userID, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress.Percent(int(totalTopics)), nil
}

func averageModulePercent(modules []ModuleProgressResult) float64 {
	if len(modules) == 0 {
		return 0
	}
	// Plain arithmetic mean: every module counts equally regardless of
	// its topic or question count.
	total := 0.0
	for _, m := range modules {
		total += m.ProgressPercent
	}
	return models.RoundPercent(total / float64(len(modules)))
}

// withConflictRetry repeats a read-modify-write that lost a race. The
// whole operation is re-run so the retry observes fresh state.
func (s *progressService) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryableConflict(err) {
			return err
		}
		s.logger.Warn("retrying progress write after conflict",
			"operation", op,
			"attempt", attempt,
			"error", err)
	}
	return fmt.Errorf("%w: %s after %d attempts", ErrConcurrentUpdate, op, maxConflictRetries)
}

func isRetryableConflict(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate) || repositories.IsDuplicateKeyError(err)
}

// invalidate drops a cache entry. Cache trouble is logged and swallowed:
// the value is always recomputable from persistent state, and the TTL
// bounds staleness if the invalidation itself is lost. Note the entry is
// dropped after the owning transaction commits, so a reader racing the
// commit can briefly repopulate a stale value; the TTL is the backstop.
func (s *progressService) invalidate(ctx context.Context, key cache.Key) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed", "key", key.String(), "error", err)
	}
}

// publish sends a progress event best-effort; delivery trouble never
// fails the caller's request.
func (s *progressService) publish(ctx context.Context, event *events.ProgressEvent) {
	if err := s.publisher.PublishProgressEvent(ctx, event); err != nil {
		s.logger.Warn("progress event publish failed", "event_type", event.Type, "error", err)
	}
}
