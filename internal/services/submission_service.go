package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// SubmissionService records quiz answers and exposes per-quiz results.
type SubmissionService interface {
	// Submit evaluates and persists an answer. Resubmitting the same
	// question overwrites the previous answer; exactly one submission per
	// (user, question) ever exists.
	Submit(ctx context.Context, req *SubmitAnswerRequest) (*SubmitResult, error)

	GetQuizResults(ctx context.Context, userID, quizID uint) (*QuizResults, error)
}

type SubmitAnswerRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

type SubmitResult struct {
	QuestionID uint `json:"question_id"`
	IsCorrect  bool `json:"is_correct"`

	// CorrectAnswer is disclosed only when the submission was correct, so
	// a wrong answer cannot be used to fish for the key.
	CorrectAnswer *string `json:"correct_answer,omitempty"`

	QuizCompleted  bool    `json:"quiz_completed"`
	ModuleProgress float64 `json:"module_progress"`
}

type QuestionResult struct {
	QuestionID uint       `json:"question_id"`
	Text       string     `json:"text"`
	Answer     string     `json:"answer,omitempty"`
	Answered   bool       `json:"answered"`
	IsCorrect  bool       `json:"is_correct"`
	Marks      int        `json:"marks"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

type QuizResults struct {
	QuizID         uint             `json:"quiz_id"`
	QuizName       string           `json:"quiz_name"`
	TotalQuestions int              `json:"total_questions"`
	Answered       int              `json:"answered"`
	Correct        int              `json:"correct"`
	MarksEarned    int              `json:"marks_earned"`
	MarksTotal     int              `json:"marks_total"`
	Questions      []QuestionResult `json:"questions"`
}

type submissionService struct {
	repo      repositories.Repository
	progress  ProgressService
	validator RequestValidator
	logger    *slog.Logger
}

// RequestValidator validates request structs and reports failures as
// field-level validation errors.
type RequestValidator interface {
	Validate(s interface{}) error
}

func NewSubmissionService(
	repo repositories.Repository,
	progress ProgressService,
	validator RequestValidator,
	logger *slog.Logger,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		progress:  progress,
		validator: validator,
		logger:    logger,
	}
}

func (s *submissionService) Submit(ctx context.Context, req *SubmitAnswerRequest) (*SubmitResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByIDWithQuiz(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.Quiz == nil {
		return nil, ErrQuizNotFound
	}

	module, err := s.repo.Module().GetByID(ctx, question.Quiz.ModuleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if err := requireEnrollment(ctx, s.repo, req.UserID, module.CourseID); err != nil {
		return nil, err
	}

	isCorrect, err := EvaluateAnswer(question, req.Answer)
	if err != nil {
		return nil, err
	}

	submission := &models.QuizSubmission{
		UserID:     req.UserID,
		QuestionID: question.ID,
		Answer:     req.Answer,
		IsCorrect:  isCorrect,
		AnsweredAt: time.Now().UTC(),
	}
	if err := s.repo.Submission().Upsert(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	// Re-derive the quiz latch in the same request so the caller observes
	// its own write in the returned progress.
	progress, err := s.progress.RecomputeQuizCompletion(ctx, req.UserID, question.Quiz.ModuleID)
	if err != nil {
		return nil, err
	}

	moduleResult, err := s.progress.GetModuleProgress(ctx, req.UserID, question.Quiz.ModuleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Answer submitted",
		"user_id", req.UserID,
		"question_id", question.ID,
		"quiz_id", question.QuizID,
		"is_correct", isCorrect)

	result := &SubmitResult{
		QuestionID:     question.ID,
		IsCorrect:      isCorrect,
		QuizCompleted:  progress.QuizCompleted,
		ModuleProgress: moduleResult.ProgressPercent,
	}
	if isCorrect {
		result.CorrectAnswer = &question.CorrectAnswer
	}
	return result, nil
}

func (s *submissionService) GetQuizResults(ctx context.Context, userID, quizID uint) (*QuizResults, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	module, err := s.repo.Module().GetByID(ctx, quiz.ModuleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if err := requireEnrollment(ctx, s.repo, userID, module.CourseID); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	byQuestion := make(map[uint]*models.QuizSubmission, len(submissions))
	for _, sub := range submissions {
		byQuestion[sub.QuestionID] = sub
	}

	results := &QuizResults{
		QuizID:         quiz.ID,
		QuizName:       quiz.Name,
		TotalQuestions: len(quiz.Questions),
		Questions:      make([]QuestionResult, 0, len(quiz.Questions)),
	}

	for _, question := range quiz.Questions {
		qr := QuestionResult{
			QuestionID: question.ID,
			Text:       question.Text,
			Marks:      question.Marks,
		}
		results.MarksTotal += question.Marks

		if sub, ok := byQuestion[question.ID]; ok {
			qr.Answered = true
			qr.Answer = sub.Answer
			qr.IsCorrect = sub.IsCorrect
			answeredAt := sub.AnsweredAt
			qr.AnsweredAt = &answeredAt

			results.Answered++
			if sub.IsCorrect {
				results.Correct++
				results.MarksEarned += question.Marks
			}
		}

		results.Questions = append(results.Questions, qr)
	}

	return results, nil
}
