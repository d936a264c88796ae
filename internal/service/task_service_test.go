package service_test

import (
	"context"
	"testing"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// TaskServiceSuite - назначения пользователей на задачи
type TaskServiceSuite struct {
	suite.Suite
	ctx      context.Context
	tasks    *MockTaskRepository
	projects *MockProjectRepository
	users    *MockUserRepository
	service  *service.TaskService
	manager  *models.User
	task     *models.Task
}

func (s *TaskServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.tasks = new(MockTaskRepository)
	s.projects = new(MockProjectRepository)
	s.users = new(MockUserRepository)
	s.service = service.NewTaskService(s.tasks, s.projects, service.NewUserService(s.users))
	s.manager = newUser(models.RoleManager)
	s.task = models.NewRecurringTask(uuid.New(), "Поддержка", "")

	s.tasks.On("GetTask", s.ctx, s.task.ID).Return(s.task, nil).Maybe()
}

func (s *TaskServiceSuite) userWith(tasks ...uuid.UUID) *models.User {
	u := newUser(models.RoleEmployee)
	u.AssignedTasks = append(u.AssignedTasks, tasks...)
	s.users.On("GetUserByID", s.ctx, u.ID).Return(u, nil).Maybe()
	return u
}

func (s *TaskServiceSuite) TestAssignUser_Success() {
	user := s.userWith()
	s.tasks.On("AssignUsers", s.ctx, s.task.ID, []uuid.UUID{user.ID}).Return(nil).Once()

	err := s.service.AssignUser(s.ctx, s.manager, s.task.ProjectID, s.task.ID, user.ID)

	s.Require().NoError(err)
	s.tasks.AssertExpectations(s.T())
}

func (s *TaskServiceSuite) TestAssignUser_AlreadyAssigned() {
	user := s.userWith(s.task.ID)

	err := s.service.AssignUser(s.ctx, s.manager, s.task.ProjectID, s.task.ID, user.ID)

	s.Equal(service.CodeConflict, service.CodeOf(err))
	s.tasks.AssertNotCalled(s.T(), "AssignUsers", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestAssignUsers_OneAlreadyAssignedRejectsBatch() {
	free := s.userWith()
	busy := s.userWith(s.task.ID)

	err := s.service.AssignUsers(s.ctx, s.manager, s.task.ProjectID, s.task.ID, []uuid.UUID{free.ID, busy.ID})

	s.Equal(service.CodeConflict, service.CodeOf(err))
	s.tasks.AssertNotCalled(s.T(), "AssignUsers", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestAssignUsers_RepeatedID() {
	user := s.userWith()

	err := s.service.AssignUsers(s.ctx, s.manager, s.task.ProjectID, s.task.ID, []uuid.UUID{user.ID, user.ID})

	s.Equal(service.CodeConflict, service.CodeOf(err))
}

func (s *TaskServiceSuite) TestAssignUser_UnknownUser() {
	missing := uuid.New()
	s.users.On("GetUserByID", s.ctx, missing).Return(nil, repo.ErrNotFound)

	err := s.service.AssignUser(s.ctx, s.manager, s.task.ProjectID, s.task.ID, missing)

	s.Equal(service.CodeNotFound, service.CodeOf(err))
}

func (s *TaskServiceSuite) TestAssignUser_TaskFromOtherProject() {
	user := s.userWith()

	err := s.service.AssignUser(s.ctx, s.manager, uuid.New(), s.task.ID, user.ID)

	s.Equal(service.CodeNotFound, service.CodeOf(err))
}

func (s *TaskServiceSuite) TestAssignUser_EmployeeForbidden() {
	user := s.userWith()

	err := s.service.AssignUser(s.ctx, user, s.task.ProjectID, s.task.ID, user.ID)

	s.Equal(service.CodeForbidden, service.CodeOf(err))
}

func (s *TaskServiceSuite) TestUnassignUser_NotAssigned() {
	user := s.userWith()

	err := s.service.UnassignUser(s.ctx, s.manager, s.task.ProjectID, s.task.ID, user.ID)

	s.Equal(service.CodeValidation, service.CodeOf(err))
	s.tasks.AssertNotCalled(s.T(), "UnassignUsers", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestUnassignUsers_Success() {
	first := s.userWith(s.task.ID)
	second := s.userWith(s.task.ID)
	s.tasks.On("UnassignUsers", s.ctx, s.task.ID, []uuid.UUID{first.ID, second.ID}).Return(nil).Once()

	err := s.service.UnassignUsers(s.ctx, s.manager, s.task.ProjectID, s.task.ID, []uuid.UUID{first.ID, second.ID})

	s.Require().NoError(err)
	s.tasks.AssertExpectations(s.T())
}

func (s *TaskServiceSuite) TestAssignUsers_Empty() {
	err := s.service.AssignUsers(s.ctx, s.manager, s.task.ProjectID, s.task.ID, nil)

	s.Equal(service.CodeValidation, service.CodeOf(err))
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	manager := newUser(models.RoleManager)
	projectID := uuid.New()

	tasks := new(MockTaskRepository)
	projects := new(MockProjectRepository)
	projects.On("GetProject", ctx, projectID).Return(&models.Project{ID: projectID}, nil)
	tasks.On("CreateTask", ctx, mock.Anything).Return(nil)
	svc := service.NewTaskService(tasks, projects, service.NewUserService(new(MockUserRepository)))

	task, err := svc.CreateTask(ctx, manager, projectID, service.CreateTaskInput{
		Type: models.TaskCompletable,
		Name: "Релиз",
	})
	require.NoError(t, err)
	require.NotNil(t, task.Completion)
	assert.Equal(t, models.TaskPending, task.Completion.State)

	_, err = svc.CreateTask(ctx, manager, projectID, service.CreateTaskInput{Type: models.TaskRecurring, Name: "  "})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))

	_, err = svc.CreateTask(ctx, newUser(models.RoleEmployee), projectID, service.CreateTaskInput{Name: "x"})
	assert.Equal(t, service.CodeForbidden, service.CodeOf(err))
}
