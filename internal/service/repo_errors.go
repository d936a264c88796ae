package service

import (
	"errors"
	"fmt"
	repo "timeRegistration/internal/repository"
)

// fromRepo переводит ошибки хранилища в бизнес-ошибки
func fromRepo(err error, resource Resource, id string, operation string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		busErr := NewNotFound(resource, id)
		busErr.Err = err
		return busErr
	case errors.Is(err, repo.ErrVersionConflict):
		return NewVersionConflict(resource, id, err)
	case errors.Is(err, repo.ErrDuplicate):
		busErr := NewConflict(resource, "уже существует")
		busErr.Err = err
		return busErr
	}
	return fmt.Errorf("%s: %w", operation, err)
}
