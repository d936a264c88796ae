package postgres

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, project_id, type, name, description, deadline, state, created_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		t        models.Task
		deadline *time.Time
		state    *int
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Type, &t.Name, &t.Description, &deadline, &state, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	if t.Type == models.TaskCompletable {
		t.Completion = &models.Completion{Deadline: deadline, State: models.TaskPending}
		if state != nil {
			t.Completion.State = models.TaskState(*state)
		}
	}
	t.AssignedUsers = []uuid.UUID{}
	return &t, nil
}

// completionColumns раскладывает выполнимую часть задачи по колонкам deadline/state
func completionColumns(t *models.Task) (*time.Time, *int) {
	if !t.IsCompletable() {
		return nil, nil
	}
	state := int(t.Completion.State)
	return t.Completion.Deadline, &state
}

func (s *Storage) CreateTask(ctx context.Context, t *models.Task) error {
	start := time.Now()
	defer logSlow("create_task", start)

	deadline, state := completionColumns(t)
	query := `INSERT INTO tasks (id, project_id, type, name, description, deadline, state, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		t.ID, t.ProjectID, t.Type, t.Name, t.Description, deadline, state,
	).Scan(&t.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.String("task_id", t.ID.String()))
		return fmt.Errorf("добавление задачи: %w", mapError(err))
	}
	if t.AssignedUsers == nil {
		t.AssignedUsers = []uuid.UUID{}
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	start := time.Now()
	defer logSlow("get_task", start)

	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("получение задачи: %w", mapError(err))
	}

	t.AssignedUsers, err = collectIDs(ctx, s.pool, `SELECT user_id FROM user_tasks WHERE task_id = $1`, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	start := time.Now()
	defer logSlow("list_tasks", start)

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	byID := make(map[uuid.UUID]*models.Task)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		tasks = append(tasks, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение задач: %w", err)
	}

	links, err := s.pool.Query(ctx,
		`SELECT ut.task_id, ut.user_id FROM user_tasks ut
			JOIN tasks t ON t.id = ut.task_id
			WHERE t.project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение назначений: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var taskID, userID uuid.UUID
		if err := links.Scan(&taskID, &userID); err != nil {
			return nil, fmt.Errorf("чтение назначения: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.AssignedUsers = append(t.AssignedUsers, userID)
		}
	}
	return tasks, links.Err()
}

func (s *Storage) UpdateTask(ctx context.Context, t *models.Task) error {
	start := time.Now()
	defer logSlow("update_task", start)

	deadline, state := completionColumns(t)
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET name = $1, description = $2, deadline = $3, state = $4 WHERE id = $5`,
		t.Name, t.Description, deadline, state, t.ID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", mapError(err))
	}
	return expectAffected(tag)
}

func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer logSlow("delete_task", start)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		return deleteTaskTx(ctx, tx, id)
	})
}

func deleteTaskTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	cascade := []string{
		`DELETE FROM user_tasks WHERE task_id = $1`,
		`DELETE FROM sessions WHERE task_id = $1`,
		`DELETE FROM comments WHERE task_id = $1`,
	}
	for _, query := range cascade {
		if _, err := tx.Exec(ctx, query, id); err != nil {
			return fmt.Errorf("каскадное удаление задачи: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return expectAffected(tag)
}

// AssignUsers - одна транзакция на всю пачку, повторное назначение откатывает всё
func (s *Storage) AssignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	start := time.Now()
	defer logSlow("assign_users", start)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, userID := range userIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO user_tasks (user_id, task_id) VALUES ($1, $2)`, userID, taskID)
			if err != nil {
				logger.Warn("Repository: Не удалось назначить пользователя",
					zap.String("task_id", taskID.String()),
					zap.String("user_id", userID.String()),
					zap.Error(err))
				return fmt.Errorf("назначение пользователя: %w", mapError(err))
			}
		}
		return nil
	})
}

func (s *Storage) UnassignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	start := time.Now()
	defer logSlow("unassign_users", start)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, userID := range userIDs {
			tag, err := tx.Exec(ctx,
				`DELETE FROM user_tasks WHERE user_id = $1 AND task_id = $2`, userID, taskID)
			if err != nil {
				return fmt.Errorf("снятие назначения: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("снятие назначения %s: %w", userID, repo.ErrNotFound)
			}
		}
		return nil
	})
}
