package postgres

import (
	"context"
	"fmt"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

func (s *Storage) CreateOptOut(ctx context.Context, o *models.OptOut) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO opt_outs (id, user_id, start_date, end_date) VALUES ($1, $2, $3, $4)`,
		o.ID, o.UserID, o.Period.StartDate, o.Period.EndDate)
	if err != nil {
		return fmt.Errorf("добавление отказа: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetOptOut(ctx context.Context, id uuid.UUID) (*models.OptOut, error) {
	o := &models.OptOut{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, start_date, end_date FROM opt_outs WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Period.StartDate, &o.Period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("получение отказа: %w", mapError(err))
	}
	return o, nil
}

func (s *Storage) ListOptOuts(ctx context.Context, userID uuid.UUID) ([]*models.OptOut, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, start_date, end_date FROM opt_outs WHERE user_id = $1 ORDER BY start_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("получение отказов: %w", err)
	}
	defer rows.Close()

	optOuts := []*models.OptOut{}
	for rows.Next() {
		o := &models.OptOut{}
		if err := rows.Scan(&o.ID, &o.UserID, &o.Period.StartDate, &o.Period.EndDate); err != nil {
			return nil, fmt.Errorf("чтение отказа: %w", err)
		}
		optOuts = append(optOuts, o)
	}
	return optOuts, rows.Err()
}

func (s *Storage) UpdateOptOut(ctx context.Context, o *models.OptOut) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE opt_outs SET start_date = $1, end_date = $2 WHERE id = $3`,
		o.Period.StartDate, o.Period.EndDate, o.ID)
	if err != nil {
		return fmt.Errorf("обновление отказа: %w", err)
	}
	return expectAffected(tag)
}

func (s *Storage) DeleteOptOut(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM opt_outs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление отказа: %w", err)
	}
	return expectAffected(tag)
}
