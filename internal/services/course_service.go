package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// CourseService owns the content hierarchy: courses, modules, topics,
// quizzes and questions. Writes that change a course's total content
// duration drop the cached duration label.
type CourseService interface {
	CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
	ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)

	CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error)
	UpdateModule(ctx context.Context, id uint, req *UpdateModuleRequest) (*models.CourseModule, error)
	DeleteModule(ctx context.Context, id uint) error
	ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error)

	CreateTopic(ctx context.Context, req *CreateTopicRequest) (*models.ModuleTopic, error)
	UpdateTopic(ctx context.Context, id uint, req *UpdateTopicRequest) (*models.ModuleTopic, error)
	DeleteTopic(ctx context.Context, id uint) error

	CreateQuiz(ctx context.Context, req *CreateQuizRequest) (*models.ModuleQuiz, error)
	GetQuiz(ctx context.Context, id uint) (*models.ModuleQuiz, error)
	DeleteQuiz(ctx context.Context, id uint) error

	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.QuizQuestion, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

// ===== REQUEST STRUCTS =====

type CreateCourseRequest struct {
	Title          string   `json:"title" validate:"required,min=1,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	Category       *string  `json:"category" validate:"omitempty,max=200"`
	Tags           []string `json:"tags"`
	ExpertiseLevel *string  `json:"expertise_level" validate:"omitempty,max=100"`
	Prerequisites  []string `json:"prerequisites"`
	Objectives     []string `json:"objectives"`
	IsPaid         bool     `json:"is_paid"`
	IsFeatured     bool     `json:"is_featured"`
	Status         *string  `json:"status" validate:"omitempty,course_status"`
	InstructorID   *uint    `json:"instructor_id"`
}

type UpdateCourseRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	Category       *string  `json:"category" validate:"omitempty,max=200"`
	Tags           []string `json:"tags"`
	ExpertiseLevel *string  `json:"expertise_level" validate:"omitempty,max=100"`
	Prerequisites  []string `json:"prerequisites"`
	Objectives     []string `json:"objectives"`
	IsPaid         *bool    `json:"is_paid"`
	IsFeatured     *bool    `json:"is_featured"`
	Status         *string  `json:"status" validate:"omitempty,course_status"`
}

type CreateModuleRequest struct {
	CourseID    uint    `json:"course_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    int     `json:"position" validate:"min=0"`
}

type UpdateModuleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    *int    `json:"position" validate:"omitempty,min=0"`
}

type CreateTopicRequest struct {
	ModuleID          uint     `json:"module_id" validate:"required"`
	Name              string   `json:"name" validate:"required,min=1,max=200"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	Position          int      `json:"position" validate:"min=0"`
	Files             []string `json:"files"`
	FilesDescription  *string  `json:"files_description"`
	Videos            []string `json:"videos"`
	VideosDescription *string  `json:"videos_description"`
	DurationSeconds   int64    `json:"duration_seconds" validate:"min=0"`
}

type UpdateTopicRequest struct {
	Name              *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	Position          *int     `json:"position" validate:"omitempty,min=0"`
	Files             []string `json:"files"`
	FilesDescription  *string  `json:"files_description"`
	Videos            []string `json:"videos"`
	VideosDescription *string  `json:"videos_description"`
	DurationSeconds   *int64   `json:"duration_seconds" validate:"omitempty,min=0"`
}

type CreateQuizRequest struct {
	ModuleID    uint    `json:"module_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateQuestionRequest struct {
	QuizID        uint     `json:"quiz_id" validate:"required"`
	Type          *string  `json:"type" validate:"omitempty,question_type"`
	Text          string   `json:"text" validate:"required,min=1"`
	Options       []string `json:"options" validate:"required,min=1,dive,min=1"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Marks         int      `json:"marks" validate:"omitempty,min=1"`
	Position      int      `json:"position" validate:"min=0"`
}

type UpdateQuestionRequest struct {
	Text          *string  `json:"text" validate:"omitempty,min=1"`
	Options       []string `json:"options" validate:"omitempty,min=1,dive,min=1"`
	CorrectAnswer *string  `json:"correct_answer" validate:"omitempty,min=1"`
	Marks         *int     `json:"marks" validate:"omitempty,min=1"`
	Position      *int     `json:"position" validate:"omitempty,min=0"`
}

type courseService struct {
	repo      repositories.Repository
	progress  ProgressService
	validator RequestValidator
	logger    *slog.Logger
}

func NewCourseService(
	repo repositories.Repository,
	progress ProgressService,
	validator RequestValidator,
	logger *slog.Logger,
) CourseService {
	return &courseService{
		repo:      repo,
		progress:  progress,
		validator: validator,
		logger:    logger,
	}
}

// ===== COURSES =====

func (s *courseService) CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Tags:           datatypes.JSONSlice[string](req.Tags),
		ExpertiseLevel: req.ExpertiseLevel,
		Prerequisites:  datatypes.JSONSlice[string](req.Prerequisites),
		Objectives:     datatypes.JSONSlice[string](req.Objectives),
		IsPaid:         req.IsPaid,
		IsFeatured:     req.IsFeatured,
		Status:         models.CourseDraft,
		InstructorID:   req.InstructorID,
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByIDWithModules(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if label, err := s.progress.GetCourseDuration(ctx, id); err == nil {
		course.TotalDuration = label
	}
	return course, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Category != nil {
		course.Category = req.Category
	}
	if req.Tags != nil {
		course.Tags = datatypes.JSONSlice[string](req.Tags)
	}
	if req.ExpertiseLevel != nil {
		course.ExpertiseLevel = req.ExpertiseLevel
	}
	if req.Prerequisites != nil {
		course.Prerequisites = datatypes.JSONSlice[string](req.Prerequisites)
	}
	if req.Objectives != nil {
		course.Objectives = datatypes.JSONSlice[string](req.Objectives)
	}
	if req.IsPaid != nil {
		course.IsPaid = *req.IsPaid
	}
	if req.IsFeatured != nil {
		course.IsFeatured = *req.IsFeatured
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.progress.InvalidateCourseDuration(ctx, id)
	s.logger.Info("Course updated", "course_id", id)
	return course, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.repo.Course().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}
	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.progress.InvalidateCourseDuration(ctx, id)
	s.logger.Info("Course deleted", "course_id", id)
	return nil
}

func (s *courseService) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

// ===== MODULES =====

func (s *courseService) CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Course().GetByID(ctx, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	module := &models.CourseModule{
		CourseID:    req.CourseID,
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.repo.Module().Create(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Module created", "module_id", module.ID, "course_id", module.CourseID)
	return module, nil
}

func (s *courseService) UpdateModule(ctx context.Context, id uint, req *UpdateModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	module, err := s.repo.Module().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	if req.Name != nil {
		module.Name = *req.Name
	}
	if req.Description != nil {
		module.Description = req.Description
	}
	if req.Position != nil {
		module.Position = *req.Position
	}

	if err := s.repo.Module().Update(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}
	return module, nil
}

func (s *courseService) DeleteModule(ctx context.Context, id uint) error {
	module, err := s.repo.Module().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrModuleNotFound
		}
		return fmt.Errorf("failed to get module: %w", err)
	}
	if err := s.repo.Module().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	// Removing a module removes its topics' contribution to the total.
	s.progress.InvalidateCourseDuration(ctx, module.CourseID)
	s.logger.Info("Module deleted", "module_id", id, "course_id", module.CourseID)
	return nil
}

func (s *courseService) ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	modules, err := s.repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

// ===== TOPICS =====

func (s *courseService) CreateTopic(ctx context.Context, req *CreateTopicRequest) (*models.ModuleTopic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	module, err := s.repo.Module().GetByID(ctx, req.ModuleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	topic := &models.ModuleTopic{
		ModuleID:          req.ModuleID,
		Name:              req.Name,
		Description:       req.Description,
		Position:          req.Position,
		Files:             datatypes.JSONSlice[string](req.Files),
		FilesDescription:  req.FilesDescription,
		Videos:            datatypes.JSONSlice[string](req.Videos),
		VideosDescription: req.VideosDescription,
		DurationSeconds:   req.DurationSeconds,
	}
	if err := s.repo.Topic().Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	if topic.DurationSeconds > 0 {
		s.progress.InvalidateCourseDuration(ctx, module.CourseID)
	}
	s.logger.Info("Topic created", "topic_id", topic.ID, "module_id", topic.ModuleID)
	return topic, nil
}

func (s *courseService) UpdateTopic(ctx context.Context, id uint, req *UpdateTopicRequest) (*models.ModuleTopic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	topic, err := s.repo.Topic().GetByIDWithModule(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	durationChanged := false
	if req.Name != nil {
		topic.Name = *req.Name
	}
	if req.Description != nil {
		topic.Description = req.Description
	}
	if req.Position != nil {
		topic.Position = *req.Position
	}
	if req.Files != nil {
		topic.Files = datatypes.JSONSlice[string](req.Files)
	}
	if req.FilesDescription != nil {
		topic.FilesDescription = req.FilesDescription
	}
	if req.Videos != nil {
		topic.Videos = datatypes.JSONSlice[string](req.Videos)
	}
	if req.VideosDescription != nil {
		topic.VideosDescription = req.VideosDescription
	}
	if req.DurationSeconds != nil && *req.DurationSeconds != topic.DurationSeconds {
		topic.DurationSeconds = *req.DurationSeconds
		durationChanged = true
	}

	if err := s.repo.Topic().Update(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}

	if durationChanged && topic.Module != nil {
		s.progress.InvalidateCourseDuration(ctx, topic.Module.CourseID)
	}
	return topic, nil
}

func (s *courseService) DeleteTopic(ctx context.Context, id uint) error {
	topic, err := s.repo.Topic().GetByIDWithModule(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to get topic: %w", err)
	}
	if err := s.repo.Topic().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	if topic.DurationSeconds > 0 && topic.Module != nil {
		s.progress.InvalidateCourseDuration(ctx, topic.Module.CourseID)
	}
	s.logger.Info("Topic deleted", "topic_id", id)
	return nil
}

// ===== QUIZZES =====

func (s *courseService) CreateQuiz(ctx context.Context, req *CreateQuizRequest) (*models.ModuleQuiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Module().GetByID(ctx, req.ModuleID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	quiz := &models.ModuleQuiz{
		ModuleID:    req.ModuleID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "module_id", quiz.ModuleID)
	return quiz, nil
}

func (s *courseService) GetQuiz(ctx context.Context, id uint) (*models.ModuleQuiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *courseService) DeleteQuiz(ctx context.Context, id uint) error {
	if _, err := s.repo.Quiz().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	s.logger.Info("Quiz deleted", "quiz_id", id)
	return nil
}

// ===== QUESTIONS =====

func (s *courseService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.QuizQuestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, req.QuizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	question := &models.QuizQuestion{
		QuizID:        req.QuizID,
		Type:          models.QuestionMultipleChoice,
		Text:          req.Text,
		Options:       datatypes.JSONSlice[string](req.Options),
		CorrectAnswer: req.CorrectAnswer,
		Marks:         req.Marks,
		Position:      req.Position,
	}
	if req.Type != nil {
		question.Type = models.QuestionType(*req.Type)
	}
	if question.Marks == 0 {
		question.Marks = 1
	}

	if err := ValidateQuestionKey(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "quiz_id", question.QuizID)
	return question, nil
}

func (s *courseService) UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.QuizQuestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Options != nil {
		question.Options = datatypes.JSONSlice[string](req.Options)
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Position != nil {
		question.Position = *req.Position
	}

	// The key invariant is re-checked on every mutation, not only when
	// the correct answer itself changed.
	if err := ValidateQuestionKey(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *courseService) DeleteQuestion(ctx context.Context, id uint) error {
	if _, err := s.repo.Question().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("Question deleted", "question_id", id)
	return nil
}
