package postgres

import (
	"context"

	"github.com/kfc-academy/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db         *gorm.DB
	course     repositories.CourseRepository
	module     repositories.ModuleRepository
	topic      repositories.TopicRepository
	quiz       repositories.QuizRepository
	question   repositories.QuestionRepository
	submission repositories.SubmissionRepository
	progress   repositories.ProgressRepository
	enrollment repositories.EnrollmentRepository
	discussion repositories.DiscussionRepository
	user       repositories.UserRepository
}

// New creates the PostgreSQL-backed repository bundle.
func New(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:         db,
		course:     NewCoursePostgreSQL(db),
		module:     NewModulePostgreSQL(db),
		topic:      NewTopicPostgreSQL(db),
		quiz:       NewQuizPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		progress:   NewProgressPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		discussion: NewDiscussionPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Course() repositories.CourseRepository         { return r.course }
func (r *gormRepository) Module() repositories.ModuleRepository         { return r.module }
func (r *gormRepository) Topic() repositories.TopicRepository           { return r.topic }
func (r *gormRepository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *gormRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *gormRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *gormRepository) Progress() repositories.ProgressRepository     { return r.progress }
func (r *gormRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *gormRepository) Discussion() repositories.DiscussionRepository { return r.discussion }
func (r *gormRepository) User() repositories.UserRepository             { return r.user }

// Transaction runs fn against a repository bound to one database
// transaction. Row locks taken inside fn are held until commit.
func (r *gormRepository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
