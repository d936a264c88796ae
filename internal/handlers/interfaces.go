package handlers

import (
	"context"
	"time"
	"timeRegistration/internal/models"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
)

// интерфейсы сервисов, которые нужны хендлерам

type UserService interface {
	GetUsers(ctx context.Context, actor *models.User) ([]*models.User, error)
	GetUser(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error)
	UpdateUserRole(ctx context.Context, actor *models.User, id uuid.UUID, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type CustomerService interface {
	GetCustomers(ctx context.Context, actor *models.User) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Customer, error)
	CreateCustomer(ctx context.Context, actor *models.User, name string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, actor *models.User, id uuid.UUID, name string) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type ProjectService interface {
	GetProjects(ctx context.Context, actor *models.User, customerID *uuid.UUID) ([]*models.Project, error)
	GetProject(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error)
	CreateProject(ctx context.Context, actor *models.User, in service.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, actor *models.User, id uuid.UUID, in service.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type TaskService interface {
	GetTasks(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]*models.Task, error)
	GetTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) (*models.Task, error)
	CreateTask(ctx context.Context, actor *models.User, projectID uuid.UUID, in service.CreateTaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, options ...models.TaskOption) (*models.Task, error)
	DeleteTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) error
	AssignUser(ctx context.Context, actor *models.User, projectID, taskID, userID uuid.UUID) error
	AssignUsers(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, userIDs []uuid.UUID) error
	UnassignUser(ctx context.Context, actor *models.User, projectID, taskID, userID uuid.UUID) error
	UnassignUsers(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, userIDs []uuid.UUID) error
}

type SessionService interface {
	GetSessions(ctx context.Context, actor *models.User, filter models.SessionFilter) ([]*models.ProjectSession, error)
	GetSession(ctx context.Context, actor *models.User, id uuid.UUID) (*models.ProjectSession, error)
	CreateSession(ctx context.Context, actor *models.User, in service.CreateSessionInput) (*models.ProjectSession, error)
	UpdateSession(ctx context.Context, actor *models.User, id uuid.UUID, patch service.SessionPatch) (*models.ProjectSession, error)
	InvoiceSessions(ctx context.Context, actor *models.User, ids []uuid.UUID) ([]*models.ProjectSession, error)
	DeleteSession(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type OptOutService interface {
	GetOptOuts(ctx context.Context, actor *models.User, userID uuid.UUID) ([]*models.OptOut, error)
	CreateOptOut(ctx context.Context, actor *models.User, userID uuid.UUID, start, end *time.Time) (*models.OptOut, error)
	UpdateOptOut(ctx context.Context, actor *models.User, userID, optOutID uuid.UUID, start, end *time.Time) (*models.OptOut, error)
	DeleteOptOut(ctx context.Context, actor *models.User, userID, optOutID uuid.UUID) error
}

type CheckInService interface {
	GetCheckIns(ctx context.Context, actor *models.User, userID uuid.UUID) ([]*models.CheckInSession, error)
}

type CommentService interface {
	GetComments(ctx context.Context, actor *models.User, taskID uuid.UUID) ([]*models.Comment, error)
	CreateComment(ctx context.Context, actor *models.User, taskID uuid.UUID, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, actor *models.User, taskID, id uuid.UUID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.User, taskID, id uuid.UUID) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
