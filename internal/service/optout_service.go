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

type OptOutService struct {
	repo  OptOutRepository
	users *UserService
	now   func() time.Time
}

func NewOptOutService(repo OptOutRepository, users *UserService, opts ...Option) *OptOutService {
	o := buildOptions(opts)
	return &OptOutService{
		repo:  repo,
		users: users,
		now:   o.now,
	}
}

// UserHasActiveOptOut - есть ли у пользователя отказ, действующий прямо сейчас
func (s *OptOutService) UserHasActiveOptOut(ctx context.Context, userID uuid.UUID) (bool, error) {
	if _, err := s.users.lookup(ctx, userID); err != nil {
		return false, err
	}

	optOuts, err := s.repo.ListOptOuts(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("получение отказов: %w", err)
	}

	now := s.now()
	for _, o := range optOuts {
		if o.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// OptOutStartsBefore - начало отказа строго раньше candidateEnd
func (s *OptOutService) OptOutStartsBefore(ctx context.Context, optOutID uuid.UUID, candidateEnd time.Time) (bool, error) {
	o, err := s.repo.GetOptOut(ctx, optOutID)
	if err != nil {
		return false, fromRepo(err, ResourceOptOut, optOutID.String(), "получение отказа")
	}
	return o.StartsBefore(candidateEnd), nil
}

func (s *OptOutService) GetOptOuts(ctx context.Context, actor *models.User, userID uuid.UUID) ([]*models.OptOut, error) {
	if err := s.users.ValidateOwnerOrManager(actor, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.lookup(ctx, userID); err != nil {
		return nil, err
	}

	optOuts, err := s.repo.ListOptOuts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение отказов: %w", err)
	}
	return optOuts, nil
}

// CreateOptOut: без даты начала отказ начинается сейчас.
// Второй действующий отказ создать нельзя.
func (s *OptOutService) CreateOptOut(ctx context.Context, actor *models.User, userID uuid.UUID, start, end *time.Time) (*models.OptOut, error) {
	if err := s.users.ValidateOwnerOrManager(actor, userID); err != nil {
		return nil, err
	}

	active, err := s.UserHasActiveOptOut(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, NewConflict(ResourceOptOut, "у пользователя уже есть действующий отказ")
	}

	period := models.Period{StartDate: s.now(), EndDate: end}
	if start != nil {
		period.StartDate = *start
	}
	if err := period.Validate(); err != nil {
		return nil, NewValidationError("period", err.Error())
	}

	optOut := &models.OptOut{
		ID:     uuid.New(),
		UserID: userID,
		Period: period,
	}
	if err := s.repo.CreateOptOut(ctx, optOut); err != nil {
		return nil, fromRepo(err, ResourceOptOut, optOut.ID.String(), "создание отказа")
	}

	logger.Info("Service: Отказ создан",
		zap.String("opt_out_id", optOut.ID.String()),
		zap.String("user_id", userID.String()))
	return optOut, nil
}

// UpdateOptOut заменяет период целиком. Если пришла только дата окончания,
// начало остаётся прежним и должно быть строго раньше нового окончания.
func (s *OptOutService) UpdateOptOut(ctx context.Context, actor *models.User, userID, optOutID uuid.UUID, start, end *time.Time) (*models.OptOut, error) {
	if err := s.users.ValidateOwnerOrManager(actor, userID); err != nil {
		return nil, err
	}

	optOut, err := s.owned(ctx, userID, optOutID)
	if err != nil {
		return nil, err
	}

	var period models.Period
	switch {
	case start != nil:
		period = models.Period{StartDate: *start, EndDate: end}
		if err := period.Validate(); err != nil {
			return nil, NewValidationError("period", err.Error())
		}
	case end != nil:
		startsBefore, err := s.OptOutStartsBefore(ctx, optOutID, *end)
		if err != nil {
			return nil, err
		}
		if !startsBefore {
			return nil, NewValidationError("end_date", "должна быть позже даты начала")
		}
		period = models.Period{StartDate: optOut.Period.StartDate, EndDate: end}
	default:
		return nil, NewValidationError("period", "не задан")
	}

	optOut.Period = period
	if err := s.repo.UpdateOptOut(ctx, optOut); err != nil {
		return nil, fromRepo(err, ResourceOptOut, optOutID.String(), "обновление отказа")
	}
	return optOut, nil
}

func (s *OptOutService) DeleteOptOut(ctx context.Context, actor *models.User, userID, optOutID uuid.UUID) error {
	if err := s.users.ValidateOwnerOrManager(actor, userID); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, optOutID); err != nil {
		return err
	}
	if err := s.repo.DeleteOptOut(ctx, optOutID); err != nil {
		return fromRepo(err, ResourceOptOut, optOutID.String(), "удаление отказа")
	}
	return nil
}

// owned: отказ другого пользователя - FORBIDDEN, а не тихое переназначение
func (s *OptOutService) owned(ctx context.Context, userID, optOutID uuid.UUID) (*models.OptOut, error) {
	optOut, err := s.repo.GetOptOut(ctx, optOutID)
	if err != nil {
		return nil, fromRepo(err, ResourceOptOut, optOutID.String(), "получение отказа")
	}
	if optOut.UserID != userID {
		return nil, NewForbidden("отказ принадлежит другому пользователю")
	}
	return optOut, nil
}
