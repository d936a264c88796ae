package service

import (
	"context"
	"fmt"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

// CheckInService отдаёт отметки, импортированные из системы пропусков
type CheckInService struct {
	repo  CheckInRepository
	users *UserService
}

func NewCheckInService(repo CheckInRepository, users *UserService) *CheckInService {
	return &CheckInService{repo: repo, users: users}
}

func (s *CheckInService) GetCheckIns(ctx context.Context, actor *models.User, userID uuid.UUID) ([]*models.CheckInSession, error) {
	if err := s.users.ValidateOwnerOrManager(actor, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.lookup(ctx, userID); err != nil {
		return nil, err
	}

	checkIns, err := s.repo.ListCheckIns(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение отметок: %w", err)
	}
	return checkIns, nil
}
