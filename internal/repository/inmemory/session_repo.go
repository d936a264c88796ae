package inmemory

import (
	"context"
	"slices"
	"time"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateSession(ctx context.Context, session *models.ProjectSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repo.ErrNotFound
	}
	if _, ok := s.tasks[session.TaskID]; !ok {
		return repo.ErrNotFound
	}

	session.CreatedAt = time.Now()
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	s.sessionIDs = append(s.sessionIDs, session.ID)
	s.resolveLocked(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id uuid.UUID) (*models.ProjectSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.sessions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := stored.Clone()
	s.resolveLocked(res)
	return res, nil
}

// FindSessions отбирает сессии по условиям; пустой список условий - все сессии
func (s *Storage) FindSessions(ctx context.Context, predicates []models.SessionPredicate) ([]*models.ProjectSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.ProjectSession{}
	for _, id := range s.sessionIDs {
		candidate := s.sessions[id].Clone()
		s.resolveLocked(candidate)
		if models.MatchAll(candidate, predicates) {
			res = append(res, candidate)
		}
	}
	return res, nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *models.ProjectSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.checkVersionLocked(session); err != nil {
		return err
	}
	s.applySessionLocked(session)
	return nil
}

// UpdateSessions сохраняет пачку целиком: сначала проверка версий всех сессий, потом запись
func (s *Storage) UpdateSessions(ctx context.Context, sessions []*models.ProjectSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, session := range sessions {
		if err := s.checkVersionLocked(session); err != nil {
			return err
		}
	}
	for _, session := range sessions {
		s.applySessionLocked(session)
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return repo.ErrNotFound
	}
	s.deleteSessionLocked(id)
	return nil
}

func (s *Storage) CreateCheckIn(ctx context.Context, checkIn *models.CheckInSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[checkIn.UserID]; !ok {
		return repo.ErrNotFound
	}
	checkIn.CreatedAt = time.Now()
	stored := *checkIn
	s.checkIns[checkIn.ID] = &stored
	return nil
}

func (s *Storage) ListCheckIns(ctx context.Context, userID uuid.UUID) ([]*models.CheckInSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.CheckInSession{}
	for _, c := range s.checkIns {
		if c.UserID == userID {
			copied := *c
			res = append(res, &copied)
		}
	}
	slices.SortFunc(res, func(a, b *models.CheckInSession) int {
		return a.Period.StartDate.Compare(b.Period.StartDate)
	})
	return res, nil
}

func (s *Storage) checkVersionLocked(session *models.ProjectSession) error {
	stored, ok := s.sessions[session.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.Version != session.Version {
		return repo.ErrVersionConflict
	}
	return nil
}

func (s *Storage) applySessionLocked(session *models.ProjectSession) {
	now := time.Now()
	session.Version++
	session.UpdatedAt = &now

	stored := s.sessions[session.ID]
	updated := session.Clone()
	stored.Period = updated.Period
	stored.Description = updated.Description
	stored.State = updated.State
	stored.Version = updated.Version
	stored.UpdatedAt = updated.UpdatedAt
}

// resolveLocked заполняет проект и заказчика по задаче сессии
func (s *Storage) resolveLocked(session *models.ProjectSession) {
	t, ok := s.tasks[session.TaskID]
	if !ok {
		return
	}
	session.ProjectID = t.ProjectID
	if p, ok := s.projects[t.ProjectID]; ok {
		session.CustomerID = p.CustomerID
	}
}

func (s *Storage) deleteSessionLocked(id uuid.UUID) {
	delete(s.sessions, id)
	s.sessionIDs = removeID(s.sessionIDs, id)
}
