package postgres

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = `id, principal_id, name, email, roles, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.PrincipalID, &u.Name, &u.Email, &u.Roles, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	start := time.Now()
	defer logSlow("create_user", start)

	query := `INSERT INTO users (id, principal_id, name, email, roles, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, u.ID, u.PrincipalID, u.Name, u.Email, u.Roles).Scan(&u.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.String("user_id", u.ID.String()))
		return fmt.Errorf("добавление пользователя: %w", mapError(err))
	}
	u.AssignedTasks = []uuid.UUID{}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByPrincipal(ctx context.Context, principalID uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE principal_id = $1`, principalID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg uuid.UUID) (*models.User, error) {
	start := time.Now()
	defer logSlow("get_user", start)

	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("получение пользователя: %w", mapError(err))
	}

	u.AssignedTasks, err = s.assignedTasks(ctx, s.pool, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	start := time.Now()
	defer logSlow("list_users", start)

	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	byID := make(map[uuid.UUID]*models.User)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение пользователя: %w", err)
		}
		u.AssignedTasks = []uuid.UUID{}
		users = append(users, u)
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение пользователей: %w", err)
	}

	links, err := s.pool.Query(ctx, `SELECT user_id, task_id FROM user_tasks`)
	if err != nil {
		return nil, fmt.Errorf("получение назначений: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var userID, taskID uuid.UUID
		if err := links.Scan(&userID, &taskID); err != nil {
			return nil, fmt.Errorf("чтение назначения: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.AssignedTasks = append(u.AssignedTasks, taskID)
		}
	}
	return users, links.Err()
}

func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	start := time.Now()
	defer logSlow("update_user", start)

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, roles = $3 WHERE id = $4`,
		u.Name, u.Email, u.Roles, u.ID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить пользователя", err)
		return fmt.Errorf("обновление пользователя: %w", mapError(err))
	}
	return expectAffected(tag)
}

// DeleteUser удаляет всё, чем владеет пользователь, одной транзакцией
func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer logSlow("delete_user", start)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		cascade := []string{
			`DELETE FROM user_tasks WHERE user_id = $1`,
			`DELETE FROM sessions WHERE user_id = $1`,
			`DELETE FROM opt_outs WHERE user_id = $1`,
			`DELETE FROM comments WHERE user_id = $1`,
		}
		for _, query := range cascade {
			if _, err := tx.Exec(ctx, query, id); err != nil {
				return fmt.Errorf("каскадное удаление пользователя: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			logger.Error("Repository: Не удалось удалить пользователя", err)
			return fmt.Errorf("удаление пользователя: %w", err)
		}
		return expectAffected(tag)
	})
}

func (s *Storage) assignedTasks(ctx context.Context, q querier, userID uuid.UUID) ([]uuid.UUID, error) {
	return collectIDs(ctx, q, `SELECT task_id FROM user_tasks WHERE user_id = $1`, userID)
}

func collectIDs(ctx context.Context, q querier, query string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("получение идентификаторов: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("чтение идентификатора: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
