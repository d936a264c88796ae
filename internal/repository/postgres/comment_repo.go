package postgres

import (
	"context"
	"fmt"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

func (s *Storage) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO comments (id, task_id, user_id, content, created_date) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.TaskID, c.UserID, c.Content, c.CreatedDate)
	if err != nil {
		return fmt.Errorf("добавление комментария: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, task_id, user_id, content, created_date FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedDate)
	if err != nil {
		return nil, fmt.Errorf("получение комментария: %w", mapError(err))
	}
	return c, nil
}

func (s *Storage) ListComments(ctx context.Context, taskID *uuid.UUID) ([]*models.Comment, error) {
	query := `SELECT id, task_id, user_id, content, created_date FROM comments`
	args := []any{}
	if taskID != nil {
		query += ` WHERE task_id = $1`
		args = append(args, *taskID)
	}
	query += ` ORDER BY created_date`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedDate); err != nil {
			return nil, fmt.Errorf("чтение комментария: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Storage) UpdateComment(ctx context.Context, c *models.Comment) error {
	tag, err := s.pool.Exec(ctx, `UPDATE comments SET content = $1 WHERE id = $2`, c.Content, c.ID)
	if err != nil {
		return fmt.Errorf("обновление комментария: %w", err)
	}
	return expectAffected(tag)
}

func (s *Storage) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление комментария: %w", err)
	}
	return expectAffected(tag)
}
