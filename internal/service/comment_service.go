package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

type CommentService struct {
	repo  CommentRepository
	tasks TaskRepository
	users *UserService
	now   func() time.Time
}

func NewCommentService(repo CommentRepository, tasks TaskRepository, users *UserService, opts ...Option) *CommentService {
	o := buildOptions(opts)
	return &CommentService{repo: repo, tasks: tasks, users: users, now: o.now}
}

func (s *CommentService) GetComments(ctx context.Context, actor *models.User, taskID uuid.UUID) ([]*models.Comment, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetTask(ctx, taskID); err != nil {
		return nil, fromRepo(err, ResourceTask, taskID.String(), "получение задачи")
	}
	comments, err := s.repo.ListComments(ctx, &taskID)
	if err != nil {
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	return comments, nil
}

// CreateComment: автор - текущий пользователь
func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, taskID uuid.UUID, content string) (*models.Comment, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "не может быть пустым")
	}
	if _, err := s.tasks.GetTask(ctx, taskID); err != nil {
		return nil, fromRepo(err, ResourceTask, taskID.String(), "получение задачи")
	}

	comment := &models.Comment{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      actor.ID,
		Content:     content,
		CreatedDate: s.now(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fromRepo(err, ResourceComment, comment.ID.String(), "создание комментария")
	}
	return comment, nil
}

// UpdateComment и DeleteComment: автор или менеджер
func (s *CommentService) UpdateComment(ctx context.Context, actor *models.User, taskID, id uuid.UUID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "не может быть пустым")
	}
	comment, err := s.authored(ctx, actor, taskID, id)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, fromRepo(err, ResourceComment, id.String(), "обновление комментария")
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, taskID, id uuid.UUID) error {
	if _, err := s.authored(ctx, actor, taskID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return fromRepo(err, ResourceComment, id.String(), "удаление комментария")
	}
	return nil
}

func (s *CommentService) authored(ctx context.Context, actor *models.User, taskID, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceComment, id.String(), "получение комментария")
	}
	if comment.TaskID != taskID {
		return nil, NewNotFound(ResourceComment, id.String())
	}
	if err := s.users.ValidateOwnerOrManager(actor, comment.UserID); err != nil {
		return nil, err
	}
	return comment, nil
}
