package inmemory

import (
	"context"
	"slices"
	"strings"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateCustomer(ctx context.Context, c *models.Customer) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.customerNameTakenLocked(c.Name, c.ID) {
		return repo.ErrDuplicate
	}
	stored := *c
	s.customers[c.ID] = &stored
	return nil
}

func (s *Storage) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *c
	return &res, nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		copied := *c
		res = append(res, &copied)
	}
	slices.SortFunc(res, func(a, b *models.Customer) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res, nil
}

func (s *Storage) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.customers[c.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if s.customerNameTakenLocked(c.Name, c.ID) {
		return repo.ErrDuplicate
	}
	stored.Name = c.Name
	return nil
}

// DeleteCustomer каскадно удаляет проекты заказчика
func (s *Storage) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.customers[id]; !ok {
		return repo.ErrNotFound
	}
	for pid, p := range s.projects {
		if p.CustomerID == id {
			s.deleteProjectLocked(pid)
		}
	}
	delete(s.customers, id)
	return nil
}

func (s *Storage) customerNameTakenLocked(name string, except uuid.UUID) bool {
	for _, c := range s.customers {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Storage) CreateProject(ctx context.Context, p *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.customers[p.CustomerID]; !ok {
		return repo.ErrNotFound
	}
	if s.projectNameTakenLocked(p.CustomerID, p.Name, p.ID) {
		return repo.ErrDuplicate
	}
	stored := *p
	s.projects[p.ID] = &stored
	return nil
}

func (s *Storage) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *p
	return &res, nil
}

// ListProjects - все проекты или только проекты заказчика
func (s *Storage) ListProjects(ctx context.Context, customerID *uuid.UUID) ([]*models.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if customerID != nil && p.CustomerID != *customerID {
			continue
		}
		copied := *p
		res = append(res, &copied)
	}
	slices.SortFunc(res, func(a, b *models.Project) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res, nil
}

func (s *Storage) UpdateProject(ctx context.Context, p *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.projects[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if _, ok := s.customers[p.CustomerID]; !ok {
		return repo.ErrNotFound
	}
	if s.projectNameTakenLocked(p.CustomerID, p.Name, p.ID) {
		return repo.ErrDuplicate
	}
	*stored = *p
	return nil
}

func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[id]; !ok {
		return repo.ErrNotFound
	}
	s.deleteProjectLocked(id)
	return nil
}

func (s *Storage) deleteProjectLocked(id uuid.UUID) {
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			s.deleteTaskLocked(tid)
		}
	}
	delete(s.projects, id)
}

func (s *Storage) projectNameTakenLocked(customerID uuid.UUID, name string, except uuid.UUID) bool {
	for _, p := range s.projects {
		if p.ID != except && p.CustomerID == customerID && p.Name == name {
			return true
		}
	}
	return false
}
