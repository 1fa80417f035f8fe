package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

type DiscussionService interface {
	PostComment(ctx context.Context, req *PostCommentRequest) (*models.CourseDiscussion, error)
	ListComments(ctx context.Context, courseID uint, limit, offset int) ([]*models.CourseDiscussion, int64, error)
	DeleteComment(ctx context.Context, id uint) error
}

type PostCommentRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	UserID   uint   `json:"user_id" validate:"required"`
	Comment  string `json:"comment" validate:"required,min=1,max=5000"`
}

type discussionService struct {
	repo      repositories.Repository
	validator RequestValidator
	logger    *slog.Logger
}

func NewDiscussionService(
	repo repositories.Repository,
	validator RequestValidator,
	logger *slog.Logger,
) DiscussionService {
	return &discussionService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *discussionService) PostComment(ctx context.Context, req *PostCommentRequest) (*models.CourseDiscussion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Course().GetByID(ctx, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Only enrolled users may post.
	if err := requireEnrollment(ctx, s.repo, req.UserID, req.CourseID); err != nil {
		return nil, err
	}

	discussion := &models.CourseDiscussion{
		CourseID: req.CourseID,
		UserID:   req.UserID,
		Comment:  req.Comment,
	}
	if err := s.repo.Discussion().Create(ctx, discussion); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("Comment posted", "course_id", req.CourseID, "user_id", req.UserID)
	return discussion, nil
}

func (s *discussionService) ListComments(ctx context.Context, courseID uint, limit, offset int) ([]*models.CourseDiscussion, int64, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrCourseNotFound
		}
		return nil, 0, fmt.Errorf("failed to get course: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	comments, total, err := s.repo.Discussion().ListByCourse(ctx, courseID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

func (s *discussionService) DeleteComment(ctx context.Context, id uint) error {
	if err := s.repo.Discussion().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
