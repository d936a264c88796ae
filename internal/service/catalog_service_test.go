package service_test

import (
	"context"
	"testing"
	"time"
	"timeRegistration/internal/models"
	"timeRegistration/internal/repository/inmemory"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	storage   *inmemory.Storage
	customers *service.CustomerService
	projects  *service.ProjectService
	comments  *service.CommentService
	tasks     *service.TaskService
	sessions  *service.SessionService
	checkIns  *service.CheckInService
	manager   *models.User
	employee  *models.User
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	storage := inmemory.New()
	users := service.NewUserService(storage)

	clock := service.WithClock(func() time.Time { return fixedNow })

	c := &catalog{
		storage:   storage,
		customers: service.NewCustomerService(storage, users),
		projects:  service.NewProjectService(storage, storage, users),
		comments:  service.NewCommentService(storage, storage, users, clock),
		tasks:     service.NewTaskService(storage, storage, users),
		sessions:  service.NewSessionService(storage, storage, users, clock),
		checkIns:  service.NewCheckInService(storage, users),
		manager:   newUser(models.RoleManager),
		employee:  newUser(models.RoleEmployee),
	}
	require.NoError(t, storage.CreateUser(context.Background(), c.manager))
	require.NoError(t, storage.CreateUser(context.Background(), c.employee))
	return c
}

func TestCustomerService(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	customer, err := c.customers.CreateCustomer(ctx, c.manager, "  ООО Ромашка ")
	require.NoError(t, err)
	assert.Equal(t, "ООО Ромашка", customer.Name)

	_, err = c.customers.CreateCustomer(ctx, c.manager, "ООО Ромашка")
	assert.Equal(t, service.CodeConflict, service.CodeOf(err))

	_, err = c.customers.CreateCustomer(ctx, c.manager, " ")
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))

	_, err = c.customers.CreateCustomer(ctx, c.employee, "ИП Иванов")
	assert.Equal(t, service.CodeForbidden, service.CodeOf(err))

	list, err := c.customers.GetCustomers(ctx, c.employee)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = c.customers.GetCustomer(ctx, c.employee, uuid.New())
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))

	updated, err := c.customers.UpdateCustomer(ctx, c.manager, customer.ID, "ООО Лютик")
	require.NoError(t, err)
	assert.Equal(t, "ООО Лютик", updated.Name)
}

func TestProjectService(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	first, err := c.customers.CreateCustomer(ctx, c.manager, "Первый")
	require.NoError(t, err)
	second, err := c.customers.CreateCustomer(ctx, c.manager, "Второй")
	require.NoError(t, err)

	project, err := c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: first.ID, Name: "Сайт"})
	require.NoError(t, err)

	t.Run("имя уникально внутри заказчика", func(t *testing.T) {
		_, err := c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: first.ID, Name: "Сайт"})
		assert.Equal(t, service.CodeConflict, service.CodeOf(err))

		_, err = c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: second.ID, Name: "Сайт"})
		assert.NoError(t, err)
	})

	t.Run("неизвестный заказчик", func(t *testing.T) {
		_, err := c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: uuid.New(), Name: "API"})
		assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
	})

	t.Run("фильтр по заказчику", func(t *testing.T) {
		byFirst, err := c.projects.GetProjects(ctx, c.employee, &first.ID)
		require.NoError(t, err)
		assert.Len(t, byFirst, 1)

		all, err := c.projects.GetProjects(ctx, c.employee, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("обновление без заказчика сохраняет прежнего", func(t *testing.T) {
		updated, err := c.projects.UpdateProject(ctx, c.manager, project.ID, service.ProjectInput{Name: "Портал"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, updated.CustomerID)
		assert.Equal(t, "Портал", updated.Name)
	})

	t.Run("удаление заказчика удаляет проекты", func(t *testing.T) {
		require.NoError(t, c.customers.DeleteCustomer(ctx, c.manager, first.ID))

		_, err := c.projects.GetProject(ctx, c.manager, project.ID)
		assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
	})
}

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	customer, err := c.customers.CreateCustomer(ctx, c.manager, "Заказчик")
	require.NoError(t, err)
	project, err := c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: customer.ID, Name: "Проект"})
	require.NoError(t, err)
	task := models.NewRecurringTask(project.ID, "Задача", "")
	require.NoError(t, c.storage.CreateTask(ctx, task))

	comment, err := c.comments.CreateComment(ctx, c.employee, task.ID, "готово")
	require.NoError(t, err)
	assert.Equal(t, c.employee.ID, comment.UserID)
	assert.True(t, comment.CreatedDate.Equal(fixedNow))

	_, err = c.comments.CreateComment(ctx, c.employee, task.ID, "  ")
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))

	_, err = c.comments.CreateComment(ctx, c.employee, uuid.New(), "текст")
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))

	other := newUser(models.RoleEmployee)
	_, err = c.comments.UpdateComment(ctx, other, task.ID, comment.ID, "чужое")
	assert.Equal(t, service.CodeForbidden, service.CodeOf(err))

	_, err = c.comments.UpdateComment(ctx, c.employee, uuid.New(), comment.ID, "не та задача")
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))

	updated, err := c.comments.UpdateComment(ctx, c.manager, task.ID, comment.ID, "проверено")
	require.NoError(t, err)
	assert.Equal(t, "проверено", updated.Content)

	list, err := c.comments.GetComments(ctx, c.employee, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "проверено", list[0].Content)

	require.NoError(t, c.comments.DeleteComment(ctx, c.employee, task.ID, comment.ID))
	list, err = c.comments.GetComments(ctx, c.employee, task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func (c *catalog) task(t *testing.T) *models.Task {
	t.Helper()
	ctx := context.Background()
	customer, err := c.customers.CreateCustomer(ctx, c.manager, "Заказчик")
	require.NoError(t, err)
	project, err := c.projects.CreateProject(ctx, c.manager, service.ProjectInput{CustomerID: customer.ID, Name: "Проект"})
	require.NoError(t, err)
	task := models.NewRecurringTask(project.ID, "Задача", "")
	require.NoError(t, c.storage.CreateTask(ctx, task))
	return task
}

func TestTaskService_AssignUserTwice(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	task := c.task(t)

	require.NoError(t, c.tasks.AssignUser(ctx, c.manager, task.ProjectID, task.ID, c.employee.ID))

	err := c.tasks.AssignUser(ctx, c.manager, task.ProjectID, task.ID, c.employee.ID)
	assert.Equal(t, service.CodeConflict, service.CodeOf(err))

	stored, err := c.storage.GetUserByID(ctx, c.employee.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAssigned(task.ID))
}

func TestSessionService_CloseStaleSession(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	task := c.task(t)

	session := models.NewProjectSession(c.employee.ID, task.ID, fixedNow.Add(-10*time.Hour), "")
	require.NoError(t, c.storage.CreateSession(ctx, session))

	t.Run("устаревшая версия", func(t *testing.T) {
		outdated, err := c.storage.GetSession(ctx, session.ID)
		require.NoError(t, err)
		outdated.Version++

		closed, err := c.sessions.CloseStaleSession(ctx, outdated, fixedNow)
		assert.False(t, closed)
		assert.Equal(t, service.CodeVersionConflict, service.CodeOf(err))
	})

	t.Run("активная сессия закрывается", func(t *testing.T) {
		current, err := c.storage.GetSession(ctx, session.ID)
		require.NoError(t, err)

		closed, err := c.sessions.CloseStaleSession(ctx, current, fixedNow)
		require.NoError(t, err)
		assert.True(t, closed)

		stored, err := c.storage.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionCompleted, stored.State)
		assert.True(t, stored.Period.EndDate.Equal(fixedNow))
	})

	t.Run("закрытая сессия не трогается", func(t *testing.T) {
		stored, err := c.storage.GetSession(ctx, session.ID)
		require.NoError(t, err)

		closed, err := c.sessions.CloseStaleSession(ctx, stored, fixedNow.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, closed)
	})
}

func TestCheckInService(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	end := fixedNow.Add(-time.Hour)
	checkIn := &models.CheckInSession{ID: uuid.New(), UserID: c.employee.ID, Period: models.NewPeriod(fixedNow.Add(-9*time.Hour), &end)}
	require.NoError(t, c.storage.CreateCheckIn(ctx, checkIn))

	own, err := c.checkIns.GetCheckIns(ctx, c.employee, c.employee.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, checkIn.ID, own[0].ID)

	byManager, err := c.checkIns.GetCheckIns(ctx, c.manager, c.employee.ID)
	require.NoError(t, err)
	assert.Len(t, byManager, 1)

	_, err = c.checkIns.GetCheckIns(ctx, c.employee, c.manager.ID)
	assert.Equal(t, service.CodeForbidden, service.CodeOf(err))

	_, err = c.checkIns.GetCheckIns(ctx, c.manager, uuid.New())
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
}
