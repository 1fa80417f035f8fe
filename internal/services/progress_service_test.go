package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kfc-academy/learning-service/internal/cache"
	"github.com/kfc-academy/learning-service/internal/events"
	"github.com/kfc-academy/learning-service/internal/models"
)

func newProgressFixture() (*fakeRepo, *cache.MemoryCache, *events.MockEventPublisher, ProgressService) {
	repo := newFakeRepo()
	memCache := cache.NewMemoryCache()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewProgressService(repo, memCache, publisher, testLogger())
	return repo, memCache, publisher, service
}

func TestMarkTopicComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("first completion updates progress", func(t *testing.T) {
		repo, _, publisher, service := newProgressFixture()
		user := repo.seedUser("Ana", "ana@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		topic := repo.seedTopic(module.ID, "Variables", 0)
		repo.seedTopic(module.ID, "Loops", 0)
		repo.seedTopic(module.ID, "Functions", 0)
		repo.seedTopic(module.ID, "Structs", 0)
		repo.seedEnrollment(user.ID, course.ID)

		result, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
		assert.NoError(t, err)
		assert.Equal(t, topic.ID, result.TopicID)
		// 1 of 4 topics at 70% weight.
		assert.Equal(t, 17.5, result.ModuleProgress)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventTopicCompleted, published[0].Type)
	})

	t.Run("repeat completion is idempotent", func(t *testing.T) {
		repo, _, publisher, service := newProgressFixture()
		user := repo.seedUser("Ana", "ana@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		topic := repo.seedTopic(module.ID, "Variables", 0)
		repo.seedTopic(module.ID, "Loops", 0)
		repo.seedEnrollment(user.ID, course.ID)

		first, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
		assert.NoError(t, err)
		second, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
		assert.NoError(t, err)

		assert.Equal(t, first.ModuleProgress, second.ModuleProgress)

		progress, err := repo.Progress().Get(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.Len(t, progress.CompletedTopicIDs, 1)

		// Only the first call publishes.
		assert.Len(t, publisher.GetPublishedEvents(), 1)
	})

	t.Run("unknown topic", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Ana", "ana@example.com")

		_, err := service.MarkTopicComplete(ctx, user.ID, 999)
		assert.ErrorIs(t, err, ErrTopicNotFound)
	})

	t.Run("invalidates cached course progress", func(t *testing.T) {
		repo, memCache, _, service := newProgressFixture()
		user := repo.seedUser("Ana", "ana@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		topic := repo.seedTopic(module.ID, "Variables", 0)
		repo.seedEnrollment(user.ID, course.ID)

		key := cache.CourseProgressKey(course.ID, user.ID)
		assert.NoError(t, memCache.Set(ctx, key, 12.34, time.Minute))

		_, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
		assert.NoError(t, err)

		var stale float64
		assert.ErrorIs(t, memCache.Get(ctx, key, &stale), cache.ErrCacheMiss)
	})
}

func TestRecomputeQuizCompletion(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeRepo) (*models.User, *models.CourseModule, []*models.QuizQuestion) {
		user := repo.seedUser("Ben", "ben@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		quiz := repo.seedQuiz(module.ID, "Checkpoint")
		q1 := repo.seedQuestion(quiz.ID, "Q1", "a", "a", "b")
		q2 := repo.seedQuestion(quiz.ID, "Q2", "b", "a", "b")
		return user, module, []*models.QuizQuestion{q1, q2}
	}

	answer := func(repo *fakeRepo, userID, questionID uint) {
		_ = repo.Submission().Upsert(ctx, &models.QuizSubmission{
			UserID:     userID,
			QuestionID: questionID,
			Answer:     "a",
			AnsweredAt: time.Now(),
		})
	}

	t.Run("not latched until every question answered", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user, module, questions := seed(repo)
		answer(repo, user.ID, questions[0].ID)

		progress, err := service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.False(t, progress.QuizCompleted)
		assert.Nil(t, progress.CompletedAt)
	})

	t.Run("latches when all answered", func(t *testing.T) {
		repo, _, publisher, service := newProgressFixture()
		user, module, questions := seed(repo)
		answer(repo, user.ID, questions[0].ID)
		answer(repo, user.ID, questions[1].ID)

		progress, err := service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.True(t, progress.QuizCompleted)
		assert.NotNil(t, progress.CompletedAt)

		types := make([]events.EventType, 0)
		for _, e := range publisher.GetPublishedEvents() {
			types = append(types, e.Type)
		}
		assert.Contains(t, types, events.EventQuizCompleted)
	})

	t.Run("latch survives question count shrinking", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user, module, questions := seed(repo)
		answer(repo, user.ID, questions[0].ID)
		answer(repo, user.ID, questions[1].ID)

		progress, err := service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.True(t, progress.QuizCompleted)
		completedAt := *progress.CompletedAt

		// A question is removed and another added; counts now disagree
		// with the latch input.
		assert.NoError(t, repo.Question().Delete(ctx, questions[1].ID))

		progress, err = service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.True(t, progress.QuizCompleted)
		assert.Equal(t, completedAt, *progress.CompletedAt)
	})

	t.Run("zero questions never completes", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Cara", "cara@example.com")
		course := repo.seedCourse("Empty")
		module := repo.seedModule(course.ID, "No quiz content")
		repo.seedQuiz(module.ID, "Empty quiz")

		progress, err := service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.False(t, progress.QuizCompleted)
	})
}

func TestGetModuleProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("no interaction yet reads as zero", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Dee", "dee@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		repo.seedTopic(module.ID, "Variables", 0)

		result, err := service.GetModuleProgress(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.ProgressPercent)
		assert.Empty(t, result.CompletedTopics)
		assert.False(t, result.QuizCompleted)
	})

	t.Run("topics and quiz combine with 70/30 weights", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Dee", "dee@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		t1 := repo.seedTopic(module.ID, "Variables", 0)
		t2 := repo.seedTopic(module.ID, "Loops", 0)
		repo.seedTopic(module.ID, "Functions", 0)
		repo.seedTopic(module.ID, "Structs", 0)
		quiz := repo.seedQuiz(module.ID, "Checkpoint")
		q := repo.seedQuestion(quiz.ID, "Q1", "a", "a", "b")
		repo.seedEnrollment(user.ID, course.ID)

		_, err := service.MarkTopicComplete(ctx, user.ID, t1.ID)
		assert.NoError(t, err)
		_, err = service.MarkTopicComplete(ctx, user.ID, t2.ID)
		assert.NoError(t, err)

		result, err := service.GetModuleProgress(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		// 2 of 4 topics: 35%.
		assert.Equal(t, 35.0, result.ProgressPercent)

		_ = repo.Submission().Upsert(ctx, &models.QuizSubmission{
			UserID: user.ID, QuestionID: q.ID, Answer: "a", IsCorrect: true, AnsweredAt: time.Now(),
		})
		_, err = service.RecomputeQuizCompletion(ctx, user.ID, module.ID)
		assert.NoError(t, err)

		result, err = service.GetModuleProgress(ctx, user.ID, module.ID)
		assert.NoError(t, err)
		// Quiz adds the 30% share.
		assert.Equal(t, 65.0, result.ProgressPercent)
	})
}

func TestGetCourseProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("averages module percentages", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Eve", "eve@example.com")
		course := repo.seedCourse("Go Basics")

		m1 := repo.seedModule(course.ID, "Syntax")
		t1 := repo.seedTopic(m1.ID, "Variables", 0)
		m2 := repo.seedModule(course.ID, "Concurrency")
		repo.seedTopic(m2.ID, "Goroutines", 0)
		repo.seedEnrollment(user.ID, course.ID)

		// Module one: topic done, no quiz content, 70%. Module two: 0%.
		_, err := service.MarkTopicComplete(ctx, user.ID, t1.ID)
		assert.NoError(t, err)

		result, err := service.GetCourseProgress(ctx, user.ID, course.ID)
		assert.NoError(t, err)
		assert.Len(t, result.Modules, 2)
		assert.Equal(t, 35.0, result.ProgressPercent)
	})

	t.Run("memoizes the overall percentage", func(t *testing.T) {
		repo, memCache, _, service := newProgressFixture()
		user := repo.seedUser("Eve", "eve@example.com")
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		repo.seedTopic(module.ID, "Variables", 0)
		repo.seedEnrollment(user.ID, course.ID)

		_, err := service.GetCourseProgress(ctx, user.ID, course.ID)
		assert.NoError(t, err)

		var cached float64
		key := cache.CourseProgressKey(course.ID, user.ID)
		assert.NoError(t, memCache.Get(ctx, key, &cached))
		assert.Equal(t, 0.0, cached)

		// A stale cached value wins until invalidation or expiry.
		assert.NoError(t, memCache.Set(ctx, key, 42.0, time.Minute))
		result, err := service.GetCourseProgress(ctx, user.ID, course.ID)
		assert.NoError(t, err)
		assert.Equal(t, 42.0, result.ProgressPercent)
	})

	t.Run("unknown course", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		user := repo.seedUser("Eve", "eve@example.com")

		_, err := service.GetCourseProgress(ctx, user.ID, 12345)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestProgressRequiresEnrollment(t *testing.T) {
	ctx := context.Background()

	repo, _, _, service := newProgressFixture()
	user := repo.seedUser("Fay", "fay@example.com")
	course := repo.seedCourse("Go Basics")
	module := repo.seedModule(course.ID, "Syntax")
	topic := repo.seedTopic(module.ID, "Variables", 0)

	_, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	// Nothing was recorded for the rejected call.
	_, err = repo.Progress().Get(ctx, user.ID, module.ID)
	assert.Error(t, err)

	_, err = service.GetCourseProgress(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	repo.seedEnrollment(user.ID, course.ID)

	result, err := service.MarkTopicComplete(ctx, user.ID, topic.ID)
	assert.NoError(t, err)
	assert.Equal(t, 70.0, result.ModuleProgress)

	courseResult, err := service.GetCourseProgress(ctx, user.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 70.0, courseResult.ProgressPercent)
}

func TestGetCourseDuration(t *testing.T) {
	ctx := context.Background()

	t.Run("sums topic durations into a label", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		course := repo.seedCourse("Go Basics")
		m1 := repo.seedModule(course.ID, "Syntax")
		m2 := repo.seedModule(course.ID, "Concurrency")
		repo.seedTopic(m1.ID, "Variables", 90*60)  // 1h30m
		repo.seedTopic(m2.ID, "Goroutines", 2*3600) // 2h

		label, err := service.GetCourseDuration(ctx, course.ID)
		assert.NoError(t, err)
		// Whole hours only: 3.5h renders as "3h".
		assert.Equal(t, "3h", label)
	})

	t.Run("no declared durations", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		repo.seedTopic(module.ID, "Variables", 0)

		label, err := service.GetCourseDuration(ctx, course.ID)
		assert.NoError(t, err)
		assert.Equal(t, "0h", label)
	})

	t.Run("serves the cached label until invalidated", func(t *testing.T) {
		repo, _, _, service := newProgressFixture()
		course := repo.seedCourse("Go Basics")
		module := repo.seedModule(course.ID, "Syntax")
		topic := repo.seedTopic(module.ID, "Variables", 3600)

		label, err := service.GetCourseDuration(ctx, course.ID)
		assert.NoError(t, err)
		assert.Equal(t, "1h", label)

		// The underlying data changes but the memo still answers.
		topic.DurationSeconds = 2 * 3600
		assert.NoError(t, repo.Topic().Update(ctx, topic))

		label, err = service.GetCourseDuration(ctx, course.ID)
		assert.NoError(t, err)
		assert.Equal(t, "1h", label)

		service.InvalidateCourseDuration(ctx, course.ID)

		label, err = service.GetCourseDuration(ctx, course.ID)
		assert.NoError(t, err)
		assert.Equal(t, "2h", label)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, _, _, service := newProgressFixture()
		_, err := service.GetCourseDuration(ctx, 777)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}
