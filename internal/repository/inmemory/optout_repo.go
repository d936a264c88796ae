package inmemory

import (
	"context"
	"slices"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateOptOut(ctx context.Context, o *models.OptOut) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[o.UserID]; !ok {
		return repo.ErrNotFound
	}
	s.optOuts[o.ID] = o.Clone()
	return nil
}

func (s *Storage) GetOptOut(ctx context.Context, id uuid.UUID) (*models.OptOut, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	o, ok := s.optOuts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *Storage) ListOptOuts(ctx context.Context, userID uuid.UUID) ([]*models.OptOut, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.OptOut{}
	for _, o := range s.optOuts {
		if o.UserID == userID {
			res = append(res, o.Clone())
		}
	}
	slices.SortFunc(res, func(a, b *models.OptOut) int {
		return a.Period.StartDate.Compare(b.Period.StartDate)
	})
	return res, nil
}

func (s *Storage) UpdateOptOut(ctx context.Context, o *models.OptOut) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.optOuts[o.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.Period = o.Clone().Period
	return nil
}

func (s *Storage) DeleteOptOut(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.optOuts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.optOuts, id)
	return nil
}
