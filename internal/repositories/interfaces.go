package repositories

import (
	"context"
	"time"

	"github.com/kfc-academy/learning-service/internal/models"
)

// Repository bundles the per-aggregate repositories behind one handle so
// services depend on a single constructor argument.
type Repository interface {
	Course() CourseRepository
	Module() ModuleRepository
	Topic() TopicRepository
	Quiz() QuizRepository
	Question() QuestionRepository
	Submission() SubmissionRepository
	Progress() ProgressRepository
	Enrollment() EnrollmentRepository
	Discussion() DiscussionRepository
	User() UserRepository

	// Transaction runs fn against a repository bound to a single database
	// transaction. Returning an error rolls back.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// CourseRepository interface for course-specific operations
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithModules(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error // Soft delete

	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)

	// TotalDurationSeconds sums topic durations across all of the course's
	// modules in a single aggregate query.
	TotalDurationSeconds(ctx context.Context, courseID uint) (int64, error)
}

// ModuleRepository interface for course-module operations
type ModuleRepository interface {
	Create(ctx context.Context, module *models.CourseModule) error
	GetByID(ctx context.Context, id uint) (*models.CourseModule, error)
	Update(ctx context.Context, module *models.CourseModule) error
	Delete(ctx context.Context, id uint) error

	ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseModule, error)
}

// TopicRepository interface for module-topic operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.ModuleTopic) error
	GetByID(ctx context.Context, id uint) (*models.ModuleTopic, error)
	GetByIDWithModule(ctx context.Context, id uint) (*models.ModuleTopic, error)
	Update(ctx context.Context, topic *models.ModuleTopic) error
	Delete(ctx context.Context, id uint) error

	ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleTopic, error)
	CountByModule(ctx context.Context, moduleID uint) (int64, error)
}

// QuizRepository interface for module-quiz operations
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.ModuleQuiz) error
	GetByID(ctx context.Context, id uint) (*models.ModuleQuiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.ModuleQuiz, error)
	Update(ctx context.Context, quiz *models.ModuleQuiz) error
	Delete(ctx context.Context, id uint) error

	ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleQuiz, error)
}

// QuestionRepository interface for quiz-question operations
type QuestionRepository interface {
	Create(ctx context.Context, question *models.QuizQuestion) error
	GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error)
	GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizQuestion, error)
	Update(ctx context.Context, question *models.QuizQuestion) error
	Delete(ctx context.Context, id uint) error

	ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error)

	// CountByModule counts active questions across all quizzes of a module.
	CountByModule(ctx context.Context, moduleID uint) (int64, error)
}

// SubmissionRepository interface for quiz-submission operations
type SubmissionRepository interface {
	// Upsert inserts the submission or, when an active row for the same
	// (user, question) exists, overwrites its answer, correctness and
	// answered-at timestamp. The unique constraint is the linearization
	// point; no application-level locking is involved.
	Upsert(ctx context.Context, submission *models.QuizSubmission) error

	GetByUserAndQuestion(ctx context.Context, userID, questionID uint) (*models.QuizSubmission, error)
	ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]*models.QuizSubmission, error)

	// CountByUserAndModule counts the distinct questions of the module's
	// quizzes the user holds an active submission for.
	CountByUserAndModule(ctx context.Context, userID, moduleID uint) (int64, error)
}

// ProgressRepository interface for module-progress operations
type ProgressRepository interface {
	// GetOrCreate returns the (user, module) record, creating an empty one
	// on first interaction.
	GetOrCreate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error)

	// GetForUpdate loads the row under a row-level lock. Callers must be
	// inside Repository.Transaction; the lock is held until commit.
	GetForUpdate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error)

	Get(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error)
	Save(ctx context.Context, progress *models.ModuleProgress) error

	ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]*models.ModuleProgress, error)
}

// EnrollmentRepository interface for course-enrollment operations
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.CourseEnrollment) error
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
	Unenroll(ctx context.Context, userID, courseID uint) error // Soft delete
	ListByUser(ctx context.Context, userID uint) ([]*models.CourseEnrollment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseEnrollment, error)
}

// DiscussionRepository interface for course-discussion operations
type DiscussionRepository interface {
	Create(ctx context.Context, discussion *models.CourseDiscussion) error
	ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]*models.CourseDiscussion, int64, error)
	Delete(ctx context.Context, id uint) error
}

// UserRepository interface for user lookups
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status       *models.CourseStatus `json:"status"`
	Category     *string              `json:"category"`
	InstructorID *uint                `json:"instructor_id"`
	IsFeatured   *bool                `json:"is_featured"`
	DateFrom     *time.Time           `json:"date_from"`
	DateTo       *time.Time           `json:"date_to"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
	SortBy       string               `json:"sort_by"`    // "created_at", "title"
	SortOrder    string               `json:"sort_order"` // "asc", "desc"
}
