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

type ProjectService struct {
	repo      ProjectRepository
	customers CustomerRepository
	users     *UserService
}

func NewProjectService(repo ProjectRepository, customers CustomerRepository, users *UserService) *ProjectService {
	return &ProjectService{repo: repo, customers: customers, users: users}
}

type ProjectInput struct {
	CustomerID  uuid.UUID
	Name        string
	Description string
}

// GetProjects - все проекты или проекты одного заказчика
func (s *ProjectService) GetProjects(ctx context.Context, actor *models.User, customerID *uuid.UUID) ([]*models.Project, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceProject, id.String(), "получение проекта")
	}
	return project, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, actor *models.User, in ProjectInput) (*models.Project, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:          uuid.New(),
		CustomerID:  in.CustomerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, fromRepo(err, ResourceProject, project.Name, "создание проекта")
	}
	logger.Info("Service: Проект создан",
		zap.String("project_id", project.ID.String()),
		zap.String("customer_id", in.CustomerID.String()))
	return project, nil
}

// UpdateProject может перенести проект к другому заказчику
func (s *ProjectService) UpdateProject(ctx context.Context, actor *models.User, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceProject, id.String(), "получение проекта")
	}
	if in.CustomerID == uuid.Nil {
		in.CustomerID = project.CustomerID
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	project.CustomerID = in.CustomerID
	project.Name = strings.TrimSpace(in.Name)
	project.Description = in.Description
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, fromRepo(err, ResourceProject, id.String(), "обновление проекта")
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fromRepo(err, ResourceProject, id.String(), "удаление проекта")
	}
	logger.Info("Service: Проект удалён", zap.String("project_id", id.String()))
	return nil
}

func (s *ProjectService) validate(ctx context.Context, in ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "не может быть пустым")
	}
	if _, err := s.customers.GetCustomer(ctx, in.CustomerID); err != nil {
		return fromRepo(err, ResourceCustomer, in.CustomerID.String(), "получение заказчика")
	}
	return nil
}
