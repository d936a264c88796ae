package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	"timeRegistration/internal/migrations"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"
	"timeRegistration/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite поднимает PostgreSQL в контейнере один раз на весь набор
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context

	customer *models.Customer
	project  *models.Project
	task     *models.Task
	user     *models.User
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "5432")
	s.Require().NoError(err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	// порт открывается раньше, чем база готова принимать запросы
	s.Require().Eventually(func() bool {
		return migrations.Up(s.connString) == nil
	}, 30*time.Second, 500*time.Millisecond)

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.WithMaxConns(5))
	s.Require().NoError(err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы и создаёт заказчика, проект, задачу и пользователя
func (s *PostgresTestSuite) SetupTest() {
	s.cleanupDatabase()

	s.customer = &models.Customer{ID: uuid.New(), Name: "ООО Ромашка"}
	s.Require().NoError(s.storage.CreateCustomer(s.ctx, s.customer))

	s.project = &models.Project{ID: uuid.New(), CustomerID: s.customer.ID, Name: "Сайт"}
	s.Require().NoError(s.storage.CreateProject(s.ctx, s.project))

	s.task = models.NewRecurringTask(s.project.ID, "Поддержка", "")
	s.Require().NoError(s.storage.CreateTask(s.ctx, s.task))

	s.user = models.NewUserFromPrincipal(models.Principal{Subject: uuid.New(), Name: "Пётр"})
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.user))
}

func (s *PostgresTestSuite) cleanupDatabase() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	if err != nil {
		s.T().Logf("Не удалось подключиться для очистки: %v", err)
		return
	}
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx,
		`TRUNCATE comments, opt_outs, sessions, user_tasks, tasks, projects, customers, users`)
	if err != nil {
		s.T().Logf("Не удалось очистить таблицы: %v", err)
	}
}

func (s *PostgresTestSuite) newSession(start time.Time) *models.ProjectSession {
	session := models.NewProjectSession(s.user.ID, s.task.ID, start, "работа")
	s.Require().NoError(s.storage.CreateSession(s.ctx, session))
	return session
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestCreateSession_ResolvesProjectAndCustomer() {
	session := s.newSession(time.Now().Add(-time.Hour))

	s.Equal(1, session.Version)
	s.Equal(s.project.ID, session.ProjectID)
	s.Equal(s.customer.ID, session.CustomerID)

	got, err := s.storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(s.customer.ID, got.CustomerID)
	s.Equal(models.SessionActive, got.State)
	s.Nil(got.Period.EndDate)
	s.WithinDuration(session.Period.StartDate, got.Period.StartDate, time.Millisecond)
}

func (s *PostgresTestSuite) TestCreateSession_UnknownUser() {
	session := models.NewProjectSession(uuid.New(), s.task.ID, time.Now(), "")

	err := s.storage.CreateSession(s.ctx, session)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *PostgresTestSuite) TestGetSession_NotFound() {
	_, err := s.storage.GetSession(s.ctx, uuid.New())
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *PostgresTestSuite) TestUpdateSession_VersionConflict() {
	session := s.newSession(time.Now().Add(-time.Hour))

	first, err := s.storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	second, err := s.storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)

	first.Complete(time.Now())
	s.Require().NoError(s.storage.UpdateSession(s.ctx, first))
	s.Equal(2, first.Version)
	s.NotNil(first.UpdatedAt)

	second.Description = "устаревшая копия"
	s.ErrorIs(s.storage.UpdateSession(s.ctx, second), repo.ErrVersionConflict)

	got, err := s.storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionCompleted, got.State)
	s.Equal("работа", got.Description)
}

func (s *PostgresTestSuite) TestUpdateSessions_RollsBackOnConflict() {
	a := s.newSession(time.Now().Add(-3 * time.Hour))
	b := s.newSession(time.Now().Add(-2 * time.Hour))

	staleB, err := s.storage.GetSession(s.ctx, b.ID)
	s.Require().NoError(err)
	b.Description = "изменено раньше"
	s.Require().NoError(s.storage.UpdateSession(s.ctx, b))

	a.Complete(time.Now())
	staleB.Complete(time.Now())
	err = s.storage.UpdateSessions(s.ctx, []*models.ProjectSession{a, staleB})
	s.ErrorIs(err, repo.ErrVersionConflict)
	s.Equal(1, a.Version)

	got, err := s.storage.GetSession(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionActive, got.State)
	s.Equal(1, got.Version)
}

func (s *PostgresTestSuite) TestUpdateSessions_Invoice() {
	a := s.newSession(time.Now().Add(-3 * time.Hour))
	b := s.newSession(time.Now().Add(-2 * time.Hour))
	for _, session := range []*models.ProjectSession{a, b} {
		session.Complete(time.Now())
		s.Require().NoError(s.storage.UpdateSession(s.ctx, session))
		s.Require().NoError(session.Invoice())
	}

	s.Require().NoError(s.storage.UpdateSessions(s.ctx, []*models.ProjectSession{a, b}))

	invoiced := models.SessionInvoiced
	found, err := s.storage.FindSessions(s.ctx, models.SessionFilter{State: &invoiced}.Predicates())
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *PostgresTestSuite) TestFindSessions_Predicates() {
	now := time.Now()
	old := s.newSession(now.Add(-9 * time.Hour))
	s.newSession(now.Add(-time.Hour))
	closed := s.newSession(now.Add(-10 * time.Hour))
	closed.Complete(now.Add(-9 * time.Hour))
	s.Require().NoError(s.storage.UpdateSession(s.ctx, closed))

	stale, err := s.storage.FindSessions(s.ctx, models.ActiveSince(now.Add(-8*time.Hour)))
	s.Require().NoError(err)
	s.Require().Len(stale, 1)
	s.Equal(old.ID, stale[0].ID)

	all, err := s.storage.FindSessions(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	byCustomer, err := s.storage.FindSessions(s.ctx, models.SessionFilter{CustomerID: &s.customer.ID}.Predicates())
	s.Require().NoError(err)
	s.Len(byCustomer, 3)

	other := uuid.New()
	none, err := s.storage.FindSessions(s.ctx, models.SessionFilter{ProjectID: &other}.Predicates())
	s.Require().NoError(err)
	s.Empty(none)

	// открытые сессии под условие по концу периода не попадают
	end := now
	ended, err := s.storage.FindSessions(s.ctx, models.SessionFilter{EndDate: &end}.Predicates())
	s.Require().NoError(err)
	s.Require().Len(ended, 1)
	s.Equal(closed.ID, ended[0].ID)
}

func (s *PostgresTestSuite) TestAssignUsers() {
	second := models.NewUserFromPrincipal(models.Principal{Subject: uuid.New()})
	s.Require().NoError(s.storage.CreateUser(s.ctx, second))

	s.Require().NoError(s.storage.AssignUsers(s.ctx, s.task.ID, []uuid.UUID{s.user.ID}))

	err := s.storage.AssignUsers(s.ctx, s.task.ID, []uuid.UUID{second.ID, s.user.ID})
	s.ErrorIs(err, repo.ErrDuplicate)

	gotSecond, err := s.storage.GetUserByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Empty(gotSecond.AssignedTasks)

	task, err := s.storage.GetTask(s.ctx, s.task.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{s.user.ID}, task.AssignedUsers)

	err = s.storage.AssignUsers(s.ctx, s.task.ID, []uuid.UUID{uuid.New()})
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *PostgresTestSuite) TestUnassignUsers_AllOrNothing() {
	second := models.NewUserFromPrincipal(models.Principal{Subject: uuid.New()})
	s.Require().NoError(s.storage.CreateUser(s.ctx, second))
	s.Require().NoError(s.storage.AssignUsers(s.ctx, s.task.ID, []uuid.UUID{s.user.ID}))

	err := s.storage.UnassignUsers(s.ctx, s.task.ID, []uuid.UUID{s.user.ID, second.ID})
	s.ErrorIs(err, repo.ErrNotFound)

	user, err := s.storage.GetUserByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.True(user.IsAssigned(s.task.ID))

	s.Require().NoError(s.storage.UnassignUsers(s.ctx, s.task.ID, []uuid.UUID{s.user.ID}))
	user, err = s.storage.GetUserByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.False(user.IsAssigned(s.task.ID))
}

func (s *PostgresTestSuite) TestDuplicatePrincipal() {
	again := models.NewUserFromPrincipal(models.Principal{Subject: s.user.PrincipalID})
	s.ErrorIs(s.storage.CreateUser(s.ctx, again), repo.ErrDuplicate)

	found, err := s.storage.GetUserByPrincipal(s.ctx, s.user.PrincipalID)
	s.Require().NoError(err)
	s.Equal(s.user.ID, found.ID)
}

func (s *PostgresTestSuite) TestCompletableTask() {
	deadline := time.Now().Add(48 * time.Hour)
	task := models.NewCompletableTask(s.project.ID, "Релиз", "", &deadline)
	s.Require().NoError(s.storage.CreateTask(s.ctx, task))

	task.Apply(models.WithTaskState(models.TaskInProgress))
	s.Require().NoError(s.storage.UpdateTask(s.ctx, task))

	got, err := s.storage.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().True(got.IsCompletable())
	s.Equal(models.TaskInProgress, got.Completion.State)
	s.Require().NotNil(got.Completion.Deadline)
	s.WithinDuration(deadline, *got.Completion.Deadline, time.Millisecond)
}

func (s *PostgresTestSuite) TestDeleteCustomerCascades() {
	session := s.newSession(time.Now())
	s.Require().NoError(s.storage.AssignUsers(s.ctx, s.task.ID, []uuid.UUID{s.user.ID}))
	comment := &models.Comment{ID: uuid.New(), TaskID: s.task.ID, UserID: s.user.ID, Content: "готово"}
	s.Require().NoError(s.storage.CreateComment(s.ctx, comment))

	s.Require().NoError(s.storage.DeleteCustomer(s.ctx, s.customer.ID))

	_, err := s.storage.GetProject(s.ctx, s.project.ID)
	s.ErrorIs(err, repo.ErrNotFound)
	_, err = s.storage.GetTask(s.ctx, s.task.ID)
	s.ErrorIs(err, repo.ErrNotFound)
	_, err = s.storage.GetSession(s.ctx, session.ID)
	s.ErrorIs(err, repo.ErrNotFound)
	_, err = s.storage.GetComment(s.ctx, comment.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	user, err := s.storage.GetUserByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Empty(user.AssignedTasks)
}

func (s *PostgresTestSuite) TestCheckIns() {
	day := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	end := day.Add(8 * time.Hour)
	checkIn := &models.CheckInSession{ID: uuid.New(), UserID: s.user.ID, Period: models.NewPeriod(day, &end)}
	s.Require().NoError(s.storage.CreateCheckIn(s.ctx, checkIn))

	list, err := s.storage.ListCheckIns(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(list[0].Period.StartDate.Equal(day))

	// отметки не смешиваются с проектными сессиями
	sessions, err := s.storage.FindSessions(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропуск интеграционных тестов в режиме short")
	}
	suite.Run(t, new(PostgresTestSuite))
}
