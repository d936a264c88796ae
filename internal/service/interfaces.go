package service

import (
	"context"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(context.Context, *models.User) error
	GetUserByID(context.Context, uuid.UUID) (*models.User, error)
	GetUserByPrincipal(context.Context, uuid.UUID) (*models.User, error)
	ListUsers(context.Context) ([]*models.User, error)
	UpdateUser(context.Context, *models.User) error
	DeleteUser(context.Context, uuid.UUID) error
}

type CustomerRepository interface {
	CreateCustomer(context.Context, *models.Customer) error
	GetCustomer(context.Context, uuid.UUID) (*models.Customer, error)
	ListCustomers(context.Context) ([]*models.Customer, error)
	UpdateCustomer(context.Context, *models.Customer) error
	DeleteCustomer(context.Context, uuid.UUID) error
}

type ProjectRepository interface {
	CreateProject(context.Context, *models.Project) error
	GetProject(context.Context, uuid.UUID) (*models.Project, error)
	ListProjects(context.Context, *uuid.UUID) ([]*models.Project, error)
	UpdateProject(context.Context, *models.Project) error
	DeleteProject(context.Context, uuid.UUID) error
}

type TaskRepository interface {
	CreateTask(context.Context, *models.Task) error
	GetTask(context.Context, uuid.UUID) (*models.Task, error)
	ListTasks(context.Context, uuid.UUID) ([]*models.Task, error)
	UpdateTask(context.Context, *models.Task) error
	DeleteTask(context.Context, uuid.UUID) error
	AssignUsers(context.Context, uuid.UUID, []uuid.UUID) error
	UnassignUsers(context.Context, uuid.UUID, []uuid.UUID) error
}

type SessionRepository interface {
	CreateSession(context.Context, *models.ProjectSession) error
	GetSession(context.Context, uuid.UUID) (*models.ProjectSession, error)
	FindSessions(context.Context, []models.SessionPredicate) ([]*models.ProjectSession, error)
	UpdateSession(context.Context, *models.ProjectSession) error
	UpdateSessions(context.Context, []*models.ProjectSession) error
	DeleteSession(context.Context, uuid.UUID) error
}

type CheckInRepository interface {
	CreateCheckIn(context.Context, *models.CheckInSession) error
	ListCheckIns(context.Context, uuid.UUID) ([]*models.CheckInSession, error)
}

type OptOutRepository interface {
	CreateOptOut(context.Context, *models.OptOut) error
	GetOptOut(context.Context, uuid.UUID) (*models.OptOut, error)
	ListOptOuts(context.Context, uuid.UUID) ([]*models.OptOut, error)
	UpdateOptOut(context.Context, *models.OptOut) error
	DeleteOptOut(context.Context, uuid.UUID) error
}

type CommentRepository interface {
	CreateComment(context.Context, *models.Comment) error
	GetComment(context.Context, uuid.UUID) (*models.Comment, error)
	ListComments(context.Context, *uuid.UUID) ([]*models.Comment, error)
	UpdateComment(context.Context, *models.Comment) error
	DeleteComment(context.Context, uuid.UUID) error
}

// Storage - всё хранилище целиком, его реализуют postgres и inmemory
type Storage interface {
	UserRepository
	CustomerRepository
	ProjectRepository
	TaskRepository
	SessionRepository
	CheckInRepository
	OptOutRepository
	CommentRepository
	HealthCheck(context.Context) error
	Close()
}
