package service

import (
	"context"
	"errors"
	"fmt"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService - пользователи и проверка ролей.
// Текущий пользователь передаётся в методы явно, сервис его сам не ищет.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ValidateRequiredRoles: FORBIDDEN, если роль пользователя не пересекается с требуемыми
func (s *UserService) ValidateRequiredRoles(user *models.User, roles ...models.Role) error {
	if user == nil || !models.HasRole(user.Roles, roles...) {
		return NewForbidden("недостаточно прав")
	}
	return nil
}

// ValidatePrincipalRoles находит пользователя по principal и проверяет его роли
func (s *UserService) ValidatePrincipalRoles(ctx context.Context, principal models.Principal, roles ...models.Role) (*models.User, error) {
	user, err := s.repo.GetUserByPrincipal(ctx, principal.Subject)
	if err != nil {
		return nil, fromRepo(err, ResourceUser, principal.Subject.String(), "получение пользователя по principal")
	}
	if err := s.ValidateRequiredRoles(user, roles...); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateOwnerOrManager: владельцу хватает EMPLOYEE, чужие данные - только MANAGER
func (s *UserService) ValidateOwnerOrManager(actor *models.User, ownerID uuid.UUID) error {
	if actor != nil && actor.ID == ownerID {
		return s.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager)
	}
	return s.ValidateRequiredRoles(actor, models.RoleManager)
}

// GetAuthorizedUser возвращает пользователя principal, при первом входе создаёт его без ролей
func (s *UserService) GetAuthorizedUser(ctx context.Context, principal models.Principal) (*models.User, error) {
	user, err := s.repo.GetUserByPrincipal(ctx, principal.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("получение пользователя по principal: %w", err)
	}

	user = models.NewUserFromPrincipal(principal)
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// параллельный запрос мог успеть создать пользователя
		if errors.Is(err, repo.ErrDuplicate) {
			existing, getErr := s.repo.GetUserByPrincipal(ctx, principal.Subject)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Создан пользователь",
		zap.String("user_id", user.ID.String()),
		zap.String("principal_id", principal.Subject.String()))
	return user, nil
}

// GetUsers: менеджер видит всех, сотрудник только себя
func (s *UserService) GetUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if actor.HasRole(models.RoleManager) {
		users, err := s.repo.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("получение пользователей: %w", err)
		}
		return users, nil
	}

	if err := s.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
		return nil, err
	}
	return []*models.User{actor}, nil
}

func (s *UserService) lookup(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceUser, id.String(), "получение пользователя")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	// свой профиль доступен даже без ролей
	if user.ID == actor.ID {
		return user, nil
	}
	if err := s.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, actor *models.User, id uuid.UUID, role models.Role) (*models.User, error) {
	if err := s.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}
	if _, err := models.ParseRole(int(role)); err != nil {
		return nil, NewValidationError("roles", err.Error())
	}

	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Roles = role
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fromRepo(err, ResourceUser, id.String(), "обновление пользователя")
	}

	logger.Info("Service: Роль пользователя изменена",
		zap.String("user_id", id.String()),
		zap.String("role", role.String()),
		zap.String("by", actor.ID.String()))
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fromRepo(err, ResourceUser, id.String(), "удаление пользователя")
	}
	logger.Info("Service: Пользователь удалён", zap.String("user_id", id.String()))
	return nil
}
