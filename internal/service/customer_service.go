package service

import (
	"context"
	"fmt"
	"strings"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomerService struct {
	repo  CustomerRepository
	users *UserService
}

func NewCustomerService(repo CustomerRepository, users *UserService) *CustomerService {
	return &CustomerService{repo: repo, users: users}
}

func (s *CustomerService) GetCustomers(ctx context.Context, actor *models.User) ([]*models.Customer, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение заказчиков: %w", err)
	}
	return customers, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Customer, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceCustomer, id.String(), "получение заказчика")
	}
	return customer, nil
}

// CreateCustomer: имя заказчика уникально
func (s *CustomerService) CreateCustomer(ctx context.Context, actor *models.User, name string) (*models.Customer, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}

	customer := &models.Customer{ID: uuid.New(), Name: name}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, fromRepo(err, ResourceCustomer, name, "создание заказчика")
	}
	logger.Info("Service: Заказчик создан", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, actor *models.User, id uuid.UUID, name string) (*models.Customer, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}

	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceCustomer, id.String(), "получение заказчика")
	}
	customer.Name = name
	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		return nil, fromRepo(err, ResourceCustomer, id.String(), "обновление заказчика")
	}
	return customer, nil
}

// DeleteCustomer удаляет заказчика со всеми проектами, задачами и сессиями
func (s *CustomerService) DeleteCustomer(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return fromRepo(err, ResourceCustomer, id.String(), "удаление заказчика")
	}
	logger.Info("Service: Заказчик удалён", zap.String("customer_id", id.String()))
	return nil
}
