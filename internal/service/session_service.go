package service

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService struct {
	repo  SessionRepository
	tasks TaskRepository
	users *UserService
	now   func() time.Time
}

func NewSessionService(repo SessionRepository, tasks TaskRepository, users *UserService, opts ...Option) *SessionService {
	o := buildOptions(opts)
	return &SessionService{
		repo:  repo,
		tasks: tasks,
		users: users,
		now:   o.now,
	}
}

type CreateSessionInput struct {
	UserID      uuid.UUID
	TaskID      uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	Description string
}

// SessionPatch - nil поля не меняются
type SessionPatch struct {
	State       *models.SessionState
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// GetSessions: чужие сессии и выборка без userId доступны только менеджеру
func (s *SessionService) GetSessions(ctx context.Context, actor *models.User, filter models.SessionFilter) ([]*models.ProjectSession, error) {
	if filter.UserID != nil && *filter.UserID == actor.ID {
		if err := s.users.ValidateRequiredRoles(actor, models.RoleEmployee, models.RoleManager); err != nil {
			return nil, err
		}
	} else if err := s.users.ValidateRequiredRoles(actor, models.RoleManager); err != nil {
		return nil, err
	}

	sessions, err := s.repo.FindSessions(ctx, filter.Predicates())
	if err != nil {
		return nil, fmt.Errorf("получение сессий: %w", err)
	}
	return sessions, nil
}

// GetActiveSessions - незакрытые сессии, начатые не позже startedBefore
func (s *SessionService) GetActiveSessions(ctx context.Context, startedBefore time.Time) ([]*models.ProjectSession, error) {
	sessions, err := s.repo.FindSessions(ctx, models.ActiveSince(startedBefore))
	if err != nil {
		return nil, fmt.Errorf("получение активных сессий: %w", err)
	}
	return sessions, nil
}

// CloseStaleSession закрывает сессию от имени системы, без проверки ролей.
// false - сессия уже не активна.
func (s *SessionService) CloseStaleSession(ctx context.Context, session *models.ProjectSession, now time.Time) (bool, error) {
	if !session.Complete(now) {
		return false, nil
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return false, fromRepo(err, ResourceSession, session.ID.String(), "закрытие сессии")
	}
	return true, nil
}

func (s *SessionService) GetSession(ctx context.Context, actor *models.User, id uuid.UUID) (*models.ProjectSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceSession, id.String(), "получение сессии")
	}
	if err := s.users.ValidateOwnerOrManager(actor, session.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) CreateSession(ctx context.Context, actor *models.User, in CreateSessionInput) (*models.ProjectSession, error) {
	if err := s.users.ValidateOwnerOrManager(actor, in.UserID); err != nil {
		return nil, err
	}

	if _, err := s.users.lookup(ctx, in.UserID); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetTask(ctx, in.TaskID); err != nil {
		return nil, fromRepo(err, ResourceTask, in.TaskID.String(), "получение задачи")
	}

	start := s.now()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	session := models.NewProjectSession(in.UserID, in.TaskID, start, in.Description)
	session.Period.EndDate = in.EndDate
	if err := session.Period.Validate(); err != nil {
		return nil, NewValidationError("period", err.Error())
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fromRepo(err, ResourceSession, session.ID.String(), "создание сессии")
	}

	logger.Info("Service: Сессия начата",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", in.UserID.String()),
		zap.String("task_id", in.TaskID.String()))
	return session, nil
}

// UpdateSession: выставленную в счёт сессию менять нельзя,
// состояние через обновление можно только закрыть
func (s *SessionService) UpdateSession(ctx context.Context, actor *models.User, id uuid.UUID, patch SessionPatch) (*models.ProjectSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fromRepo(err, ResourceSession, id.String(), "получение сессии")
	}
	if err := s.users.ValidateOwnerOrManager(actor, session.UserID); err != nil {
		return nil, err
	}
	if session.State == models.SessionInvoiced {
		return nil, NewInvalidState(ResourceSession, id.String(), session.State.String())
	}

	if patch.Description != nil {
		session.Description = *patch.Description
	}
	if patch.StartDate != nil {
		session.Period.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		end := *patch.EndDate
		session.Period.EndDate = &end
	}

	if patch.State != nil && *patch.State != session.State {
		switch *patch.State {
		case models.SessionCompleted:
			if session.Period.EndDate != nil {
				session.State = models.SessionCompleted
			} else {
				session.Complete(s.now())
			}
		case models.SessionInvoiced:
			return nil, NewValidationError("state", "выставление счёта только пакетной операцией")
		default:
			return nil, NewInvalidState(ResourceSession, id.String(), session.State.String())
		}
	}

	if err := session.Period.Validate(); err != nil {
		return nil, NewValidationError("period", err.Error())
	}

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fromRepo(err, ResourceSession, id.String(), "обновление сессии")
	}
	return session, nil
}

// InvoiceSessions проверяет всю пачку и только потом сохраняет её одной транзакцией.
// Любая ошибка означает, что ни одна сессия не изменилась.
func (s *SessionService) InvoiceSessions(ctx context.Context, actor *models.User, ids []uuid.UUID) ([]*models.ProjectSession, error) {
	if len(ids) == 0 {
		return nil, NewValidationError("session_ids", "список пуст")
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	toSave := make([]*models.ProjectSession, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		session, err := s.repo.GetSession(ctx, id)
		if err != nil {
			return nil, fromRepo(err, ResourceSession, id.String(), "получение сессии")
		}
		if err := s.users.ValidateOwnerOrManager(actor, session.UserID); err != nil {
			return nil, err
		}
		if err := session.Invoice(); err != nil {
			logger.Warn("Service: Сессия не завершена, счёт не выставлен",
				zap.String("session_id", id.String()),
				zap.String("state", session.State.String()))
			return nil, NewInvalidState(ResourceSession, id.String(), session.State.String())
		}
		toSave = append(toSave, session)
	}

	if err := s.repo.UpdateSessions(ctx, toSave); err != nil {
		return nil, fromRepo(err, ResourceSession, "batch", "выставление счёта")
	}

	logger.Info("Service: Сессии выставлены в счёт",
		zap.Int("count", len(toSave)),
		zap.String("by", actor.ID.String()))
	return toSave, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, actor *models.User, id uuid.UUID) error {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return fromRepo(err, ResourceSession, id.String(), "получение сессии")
	}
	if err := s.users.ValidateOwnerOrManager(actor, session.UserID); err != nil {
		return err
	}
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fromRepo(err, ResourceSession, id.String(), "удаление сессии")
	}
	return nil
}
