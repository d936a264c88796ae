package postgres

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Storage) CreateCustomer(ctx context.Context, c *models.Customer) error {
	start := time.Now()
	defer logSlow("create_customer", start)

	_, err := s.pool.Exec(ctx, `INSERT INTO customers (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		logger.Error("Repository: Не удалось добавить заказчика", err)
		return fmt.Errorf("добавление заказчика: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c := &models.Customer{}
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("получение заказчика: %w", mapError(err))
	}
	return c, nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	start := time.Now()
	defer logSlow("list_customers", start)

	rows, err := s.pool.Query(ctx, `SELECT id, name FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("получение заказчиков: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("чтение заказчика: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Storage) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	tag, err := s.pool.Exec(ctx, `UPDATE customers SET name = $1 WHERE id = $2`, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("обновление заказчика: %w", mapError(err))
	}
	return expectAffected(tag)
}

// DeleteCustomer: заказчик -> проекты -> задачи -> сессии, комментарии, назначения
func (s *Storage) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer logSlow("delete_customer", start)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		projectIDs, err := collectIDs(ctx, tx, `SELECT id FROM projects WHERE customer_id = $1`, id)
		if err != nil {
			return err
		}
		for _, projectID := range projectIDs {
			if err := deleteProjectTx(ctx, tx, projectID); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
		if err != nil {
			logger.Error("Repository: Не удалось удалить заказчика", err)
			return fmt.Errorf("удаление заказчика: %w", err)
		}
		return expectAffected(tag)
	})
}

func (s *Storage) CreateProject(ctx context.Context, p *models.Project) error {
	start := time.Now()
	defer logSlow("create_project", start)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, customer_id, name, description) VALUES ($1, $2, $3, $4)`,
		p.ID, p.CustomerID, p.Name, p.Description)
	if err != nil {
		logger.Error("Repository: Не удалось добавить проект", err)
		return fmt.Errorf("добавление проекта: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, customer_id, name, description FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.CustomerID, &p.Name, &p.Description)
	if err != nil {
		return nil, fmt.Errorf("получение проекта: %w", mapError(err))
	}
	return p, nil
}

func (s *Storage) ListProjects(ctx context.Context, customerID *uuid.UUID) ([]*models.Project, error) {
	start := time.Now()
	defer logSlow("list_projects", start)

	query := `SELECT id, customer_id, name, description FROM projects`
	args := []any{}
	if customerID != nil {
		query += ` WHERE customer_id = $1`
		args = append(args, *customerID)
	}
	query += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("чтение проекта: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Storage) UpdateProject(ctx context.Context, p *models.Project) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET customer_id = $1, name = $2, description = $3 WHERE id = $4`,
		p.CustomerID, p.Name, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("обновление проекта: %w", mapError(err))
	}
	return expectAffected(tag)
}

func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return deleteProjectTx(ctx, tx, id)
	})
}

func deleteProjectTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	taskIDs, err := collectIDs(ctx, tx, `SELECT id FROM tasks WHERE project_id = $1`, id)
	if err != nil {
		return err
	}
	for _, taskID := range taskIDs {
		if err := deleteTaskTx(ctx, tx, taskID); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление проекта: %w", err)
	}
	return expectAffected(tag)
}
