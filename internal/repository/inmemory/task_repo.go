package inmemory

import (
	"context"
	"slices"
	"time"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTask(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[t.ProjectID]; !ok {
		return repo.ErrNotFound
	}

	t.CreatedAt = time.Now()
	stored := t.Clone()
	stored.AssignedUsers = []uuid.UUID{}
	s.tasks[t.ID] = stored
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			res = append(res, t.Clone())
		}
	}
	slices.SortFunc(res, func(a, b *models.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return res, nil
}

func (s *Storage) UpdateTask(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return repo.ErrNotFound
	}
	updated := t.Clone()
	stored.Name = updated.Name
	stored.Description = updated.Description
	stored.Completion = updated.Completion
	return nil
}

// DeleteTask удаляет сессии, комментарии и назначения задачи
func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Storage) deleteTaskLocked(id uuid.UUID) {
	t := s.tasks[id]
	for _, userID := range t.AssignedUsers {
		if u, ok := s.users[userID]; ok {
			u.AssignedTasks = removeID(u.AssignedTasks, id)
		}
	}
	for sid, session := range s.sessions {
		if session.TaskID == id {
			s.deleteSessionLocked(sid)
		}
	}
	for cid, comment := range s.comments {
		if comment.TaskID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.tasks, id)
}

// AssignUsers назначает всех пользователей или никого.
// ErrNotFound - нет задачи или пользователя, ErrDuplicate - уже назначен.
func (s *Storage) AssignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, userID := range userIDs {
		u, ok := s.users[userID]
		if !ok {
			return repo.ErrNotFound
		}
		if u.IsAssigned(taskID) {
			return repo.ErrDuplicate
		}
	}

	for _, userID := range userIDs {
		u := s.users[userID]
		u.AssignedTasks = append(u.AssignedTasks, taskID)
		if !t.HasUser(userID) {
			t.AssignedUsers = append(t.AssignedUsers, userID)
		}
	}
	return nil
}

// UnassignUsers снимает назначения целиком; ErrNotFound если кто-то не назначен
func (s *Storage) UnassignUsers(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, userID := range userIDs {
		u, ok := s.users[userID]
		if !ok || !u.IsAssigned(taskID) {
			return repo.ErrNotFound
		}
	}

	for _, userID := range userIDs {
		u := s.users[userID]
		u.AssignedTasks = removeID(u.AssignedTasks, taskID)
		t.AssignedUsers = removeID(t.AssignedUsers, userID)
	}
	return nil
}
