package inmemory

import (
	"context"
	"slices"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateComment(ctx context.Context, c *models.Comment) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[c.TaskID]; !ok {
		return repo.ErrNotFound
	}
	if _, ok := s.users[c.UserID]; !ok {
		return repo.ErrNotFound
	}
	stored := *c
	s.comments[c.ID] = &stored
	return nil
}

func (s *Storage) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *c
	return &res, nil
}

// ListComments - все комментарии или только по задаче
func (s *Storage) ListComments(ctx context.Context, taskID *uuid.UUID) ([]*models.Comment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Comment{}
	for _, c := range s.comments {
		if taskID != nil && c.TaskID != *taskID {
			continue
		}
		copied := *c
		res = append(res, &copied)
	}
	slices.SortFunc(res, func(a, b *models.Comment) int {
		return a.CreatedDate.Compare(b.CreatedDate)
	})
	return res, nil
}

func (s *Storage) UpdateComment(ctx context.Context, c *models.Comment) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.comments[c.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.Content = c.Content
	return nil
}

func (s *Storage) DeleteComment(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.comments[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
