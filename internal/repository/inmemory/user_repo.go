package inmemory

import (
	"context"
	"slices"
	"time"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if existing.PrincipalID == u.PrincipalID {
			return repo.ErrDuplicate
		}
	}

	u.CreatedAt = time.Now()
	stored := u.Clone()
	stored.AssignedTasks = []uuid.UUID{}
	s.users[u.ID] = stored
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Storage) GetUserByPrincipal(ctx context.Context, principalID uuid.UUID) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if u.PrincipalID == principalID {
			return u.Clone(), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		res = append(res, u.Clone())
	}
	slices.SortFunc(res, func(a, b *models.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return res, nil
}

// UpdateUser меняет имя, почту и роли. Назначения задач идут через AssignUsers.
func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.Roles = u.Roles
	return nil
}

// DeleteUser удаляет пользователя вместе с его сессиями, отказами, комментариями и назначениями
func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}

	for _, taskID := range u.AssignedTasks {
		if t, ok := s.tasks[taskID]; ok {
			t.AssignedUsers = removeID(t.AssignedUsers, id)
		}
	}
	for sid, session := range s.sessions {
		if session.UserID == id {
			s.deleteSessionLocked(sid)
		}
	}
	for cid, checkIn := range s.checkIns {
		if checkIn.UserID == id {
			delete(s.checkIns, cid)
		}
	}
	for oid, optOut := range s.optOuts {
		if optOut.UserID == id {
			delete(s.optOuts, oid)
		}
	}
	for cid, comment := range s.comments {
		if comment.UserID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.users, id)
	return nil
}
