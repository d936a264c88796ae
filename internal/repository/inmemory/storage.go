package inmemory

import (
	"context"
	"sync"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

// Storage держит все сущности в памяти под одним RWMutex.
// Наружу отдаются только копии, иначе вызывающий мог бы менять данные мимо блокировки.
type Storage struct {
	mtx *sync.RWMutex

	users     map[uuid.UUID]*models.User
	customers map[uuid.UUID]*models.Customer
	projects  map[uuid.UUID]*models.Project
	tasks     map[uuid.UUID]*models.Task
	sessions  map[uuid.UUID]*models.ProjectSession
	checkIns  map[uuid.UUID]*models.CheckInSession
	optOuts   map[uuid.UUID]*models.OptOut
	comments  map[uuid.UUID]*models.Comment

	// порядок вставки для стабильной выдачи списков
	sessionIDs []uuid.UUID
}

func New() *Storage {
	return &Storage{
		mtx:        &sync.RWMutex{},
		users:      make(map[uuid.UUID]*models.User),
		customers:  make(map[uuid.UUID]*models.Customer),
		projects:   make(map[uuid.UUID]*models.Project),
		tasks:      make(map[uuid.UUID]*models.Task),
		sessions:   make(map[uuid.UUID]*models.ProjectSession),
		checkIns:   make(map[uuid.UUID]*models.CheckInSession),
		optOuts:    make(map[uuid.UUID]*models.OptOut),
		comments:   make(map[uuid.UUID]*models.Comment),
		sessionIDs: []uuid.UUID{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Close() {}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for ind, val := range ids {
		if val == id {
			return append(ids[:ind], ids[ind+1:]...)
		}
	}
	return ids
}
