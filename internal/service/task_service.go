package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь проверки бизнес-логики задач и назначений

type TaskService struct {
	repo     TaskRepository
	projects ProjectRepository
	users    *UserService
}

func NewTaskService(repo TaskRepository, projects ProjectRepository, users *UserService) *TaskService {
	return &TaskService{
		repo:     repo,
		projects: projects,
		users:    users,
	}
}

type CreateTaskInput struct {
	Type        models.TaskType
	Name        string
	Description string
	Deadline    *time.Time
}

func (s *TaskService) GetTasks(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]*models.Task, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fromRepo(err, ResourceProject, projectID.String(), "получение проекта")
	}

	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) (*models.Task, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	return s.taskInProject(ctx, projectID, taskID)
}

func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, projectID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}
	if _, err := models.ParseTaskType(int(in.Type)); err != nil {
		return nil, NewValidationError("type", err.Error())
	}
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fromRepo(err, ResourceProject, projectID.String(), "получение проекта")
	}

	var task *models.Task
	if in.Type == models.TaskCompletable {
		task = models.NewCompletableTask(projectID, in.Name, in.Description, in.Deadline)
	} else {
		task = models.NewRecurringTask(projectID, in.Name, in.Description)
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fromRepo(err, ResourceTask, task.ID.String(), "создание задачи")
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", projectID.String()))
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, options ...models.TaskOption) (*models.Task, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	task, err := s.taskInProject(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	task.Apply(options...)
	if strings.TrimSpace(task.Name) == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}
	if task.IsCompletable() && !task.Completion.State.Valid() {
		return nil, NewValidationError("state", "неизвестное состояние задачи")
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, fromRepo(err, ResourceTask, taskID.String(), "обновление задачи")
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) error {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if _, err := s.taskInProject(ctx, projectID, taskID); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return fromRepo(err, ResourceTask, taskID.String(), "удаление задачи")
	}
	logger.Info("Service: Задача удалена", zap.String("task_id", taskID.String()))
	return nil
}

func (s *TaskService) AssignUser(ctx context.Context, actor *models.User, projectID, taskID, userID uuid.UUID) error {
	return s.AssignUsers(ctx, actor, projectID, taskID, []uuid.UUID{userID})
}

// AssignUsers: сначала проверка каждого пользователя, затем одна запись на всю пачку.
// Назначение проверяется по задачам пользователя.
func (s *TaskService) AssignUsers(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return NewValidationError("user_ids", "список пуст")
	}
	if _, err := s.taskInProject(ctx, projectID, taskID); err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		user, err := s.users.lookup(ctx, userID)
		if err != nil {
			return err
		}
		_, repeated := seen[userID]
		if repeated || user.IsAssigned(taskID) {
			return NewConflict(ResourceTask, fmt.Sprintf("пользователь %s уже назначен", userID))
		}
		seen[userID] = struct{}{}
	}

	if err := s.repo.AssignUsers(ctx, taskID, userIDs); err != nil {
		return fromRepo(err, ResourceTask, taskID.String(), "назначение пользователей")
	}

	logger.Info("Service: Пользователи назначены на задачу",
		zap.String("task_id", taskID.String()),
		zap.Int("count", len(userIDs)))
	return nil
}

func (s *TaskService) UnassignUser(ctx context.Context, actor *models.User, projectID, taskID, userID uuid.UUID) error {
	return s.UnassignUsers(ctx, actor, projectID, taskID, []uuid.UUID{userID})
}

func (s *TaskService) UnassignUsers(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return NewValidationError("user_ids", "список пуст")
	}
	if _, err := s.taskInProject(ctx, projectID, taskID); err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		user, err := s.users.lookup(ctx, userID)
		if err != nil {
			return err
		}
		_, repeated := seen[userID]
		if repeated || !user.IsAssigned(taskID) {
			return NewValidationError("user_id", fmt.Sprintf("пользователь %s не назначен на задачу", userID))
		}
		seen[userID] = struct{}{}
	}

	if err := s.repo.UnassignUsers(ctx, taskID, userIDs); err != nil {
		return fromRepo(err, ResourceTask, taskID.String(), "снятие назначений")
	}

	logger.Info("Service: Назначения сняты",
		zap.String("task_id", taskID.String()),
		zap.Int("count", len(userIDs)))
	return nil
}

// taskInProject: задача из другого проекта считается ненайденной
func (s *TaskService) taskInProject(ctx context.Context, projectID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fromRepo(err, ResourceTask, taskID.String(), "получение задачи")
	}
	if task.ProjectID != projectID {
		return nil, NewNotFound(ResourceTask, taskID.String())
	}
	return task, nil
}
