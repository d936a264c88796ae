package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const selectProjectSessions = `SELECT
				s.id,
				s.user_id,
				s.task_id,
				t.project_id,
				p.customer_id,
				s.start_date,
				s.end_date,
				s.description,
				s.state,
				s.version,
				s.created_at,
				s.updated_at
			FROM sessions s
			JOIN tasks t ON t.id = s.task_id
			JOIN projects p ON p.id = t.project_id
			WHERE s.type = 1`

// sessionColumns - куда ложится каждое логическое поле фильтра
var sessionColumns = map[models.SessionColumn]string{
	models.ColumnCustomerID: "p.customer_id",
	models.ColumnProjectID:  "t.project_id",
	models.ColumnTaskID:     "s.task_id",
	models.ColumnUserID:     "s.user_id",
	models.ColumnState:      "s.state",
	models.ColumnStartDate:  "s.start_date",
	models.ColumnEndDate:    "s.end_date",
}

// buildWhere превращает условия в " AND ..." с позиционными параметрами
func buildWhere(predicates []models.SessionPredicate) (string, []any, error) {
	var (
		sb   strings.Builder
		args []any
	)
	for _, p := range predicates {
		column, ok := sessionColumns[p.Column]
		if !ok {
			return "", nil, fmt.Errorf("неизвестное поле фильтра: %s", p.Column)
		}

		switch p.Operator {
		case models.OpIsNull:
			fmt.Fprintf(&sb, " AND %s IS NULL", column)
		case models.OpEqual, models.OpGreaterEqual, models.OpLessEqual:
			args = append(args, p.Value)
			fmt.Fprintf(&sb, " AND %s %s $%d", column, p.Operator, len(args))
		default:
			return "", nil, fmt.Errorf("неизвестный оператор: %s", p.Operator)
		}
	}
	return sb.String(), args, nil
}

func scanProjectSession(row pgx.Row) (*models.ProjectSession, error) {
	ps := &models.ProjectSession{}
	err := row.Scan(
		&ps.ID,
		&ps.UserID,
		&ps.TaskID,
		&ps.ProjectID,
		&ps.CustomerID,
		&ps.Period.StartDate,
		&ps.Period.EndDate,
		&ps.Description,
		&ps.State,
		&ps.Version,
		&ps.CreatedAt,
		&ps.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *Storage) CreateSession(ctx context.Context, session *models.ProjectSession) error {
	start := time.Now()
	defer logSlow("create_session", start)

	query := `INSERT INTO sessions
				(id, type, user_id, task_id, start_date, end_date, description, state, version, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW())
				RETURNING version, created_at`

	err := s.pool.QueryRow(ctx, query,
		session.ID,
		models.SessionTypeProject,
		session.UserID,
		session.TaskID,
		session.Period.StartDate,
		session.Period.EndDate,
		session.Description,
		session.State,
	).Scan(&session.Version, &session.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить сессию", err, zap.String("session_id", session.ID.String()))
		return fmt.Errorf("добавление сессии: %w", mapError(err))
	}

	err = s.pool.QueryRow(ctx,
		`SELECT t.project_id, p.customer_id FROM tasks t JOIN projects p ON p.id = t.project_id WHERE t.id = $1`,
		session.TaskID,
	).Scan(&session.ProjectID, &session.CustomerID)
	if err != nil {
		return fmt.Errorf("получение проекта сессии: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id uuid.UUID) (*models.ProjectSession, error) {
	start := time.Now()
	defer logSlow("get_session", start)

	ps, err := scanProjectSession(s.pool.QueryRow(ctx, selectProjectSessions+` AND s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("получение сессии: %w", mapError(err))
	}
	return ps, nil
}

func (s *Storage) FindSessions(ctx context.Context, predicates []models.SessionPredicate) ([]*models.ProjectSession, error) {
	start := time.Now()
	defer logSlow("find_sessions", start)

	where, args, err := buildWhere(predicates)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, selectProjectSessions+where+` ORDER BY s.start_date`, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить сессии", err)
		return nil, fmt.Errorf("получение сессий: %w", err)
	}
	defer rows.Close()

	sessions := []*models.ProjectSession{}
	for rows.Next() {
		ps, err := scanProjectSession(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение сессии: %w", err)
		}
		sessions = append(sessions, ps)
	}
	return sessions, rows.Err()
}

func (s *Storage) UpdateSession(ctx context.Context, session *models.ProjectSession) error {
	start := time.Now()
	defer logSlow("update_session", start)

	return updateSession(ctx, s.pool, session)
}

// UpdateSessions - вся пачка в одной транзакции, конфликт версии откатывает всё
func (s *Storage) UpdateSessions(ctx context.Context, sessions []*models.ProjectSession) error {
	start := time.Now()
	defer logSlow("update_sessions", start)

	versions := make([]int, len(sessions))
	for i, session := range sessions {
		versions[i] = session.Version
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, session := range sessions {
			if err := updateSession(ctx, tx, session); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// транзакция откатилась, версии в памяти тоже возвращаем
		for i, session := range sessions {
			session.Version = versions[i]
		}
		return err
	}
	return nil
}

func updateSession(ctx context.Context, q querier, session *models.ProjectSession) error {
	query := `UPDATE sessions
			SET start_date = $1,
				end_date = $2,
				description = $3,
				state = $4,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $5 AND version = $6 AND type = 1
			RETURNING updated_at, version`

	err := q.QueryRow(ctx, query,
		session.Period.StartDate,
		session.Period.EndDate,
		session.Description,
		session.State,
		session.ID,
		session.Version,
	).Scan(&session.UpdatedAt, &session.Version)

	if err != nil {
		if err == pgx.ErrNoRows {
			logger.Warn("Repository: Конфликт версий при обновлении сессии",
				zap.String("session_id", session.ID.String()),
				zap.Int("expected_version", session.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить сессию", err)
		return fmt.Errorf("обновление сессии: %w", mapError(err))
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1 AND type = 1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить сессию", err)
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return expectAffected(tag)
}

func (s *Storage) CreateCheckIn(ctx context.Context, checkIn *models.CheckInSession) error {
	query := `INSERT INTO sessions (id, type, user_id, start_date, end_date, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		checkIn.ID,
		models.SessionTypeCheckIn,
		checkIn.UserID,
		checkIn.Period.StartDate,
		checkIn.Period.EndDate,
	).Scan(&checkIn.CreatedAt)
	if err != nil {
		return fmt.Errorf("добавление отметки: %w", mapError(err))
	}
	return nil
}

func (s *Storage) ListCheckIns(ctx context.Context, userID uuid.UUID) ([]*models.CheckInSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, start_date, end_date, created_at FROM sessions
			WHERE type = 0 AND user_id = $1 ORDER BY start_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("получение отметок: %w", err)
	}
	defer rows.Close()

	checkIns := []*models.CheckInSession{}
	for rows.Next() {
		c := &models.CheckInSession{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Period.StartDate, &c.Period.EndDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение отметки: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}
