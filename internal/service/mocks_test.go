package service_test

import (
	"context"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByPrincipal(ctx context.Context, principalID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, session *models.ProjectSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.ProjectSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// сервис меняет полученную сессию, как и копию из хранилища
	return args.Get(0).(*models.ProjectSession).Clone(), args.Error(1)
}

func (m *MockSessionRepository) FindSessions(ctx context.Context, predicates []models.SessionPredicate) ([]*models.ProjectSession, error) {
	args := m.Called(ctx, predicates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProjectSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateSession(ctx context.Context, session *models.ProjectSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) UpdateSessions(ctx context.Context, sessions []*models.ProjectSession) error {
	return m.Called(ctx, sessions).Error(0)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskRepository) AssignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	return m.Called(ctx, taskID, userIDs).Error(0)
}

func (m *MockTaskRepository) UnassignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	return m.Called(ctx, taskID, userIDs).Error(0)
}

type MockOptOutRepository struct {
	mock.Mock
}

func (m *MockOptOutRepository) CreateOptOut(ctx context.Context, optOut *models.OptOut) error {
	return m.Called(ctx, optOut).Error(0)
}

func (m *MockOptOutRepository) GetOptOut(ctx context.Context, id uuid.UUID) (*models.OptOut, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OptOut).Clone(), args.Error(1)
}

func (m *MockOptOutRepository) ListOptOuts(ctx context.Context, userID uuid.UUID) ([]*models.OptOut, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OptOut), args.Error(1)
}

func (m *MockOptOutRepository) UpdateOptOut(ctx context.Context, optOut *models.OptOut) error {
	return m.Called(ctx, optOut).Error(0)
}

func (m *MockOptOutRepository) DeleteOptOut(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) ListProjects(ctx context.Context, customerID *uuid.UUID) ([]*models.Project, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) UpdateProject(ctx context.Context, project *models.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newUser(roles models.Role) *models.User {
	return &models.User{
		ID:            uuid.New(),
		PrincipalID:   uuid.New(),
		Name:          "user",
		Roles:         roles,
		AssignedTasks: []uuid.UUID{},
	}
}
