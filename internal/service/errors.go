package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeInvalidState    = "INVALID_STATE"
	CodeVersionConflict = "VERSION_CONFLICT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// Resource - название сущности в сообщениях об ошибках
type Resource string

const (
	ResourceUser     Resource = "Пользователь"
	ResourceCustomer Resource = "Заказчик"
	ResourceProject  Resource = "Проект"
	ResourceTask     Resource = "Задача"
	ResourceSession  Resource = "Сессия"
	ResourceOptOut   Resource = "Отказ"
	ResourceComment  Resource = "Комментарий"
)

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewForbidden(reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeForbidden,
		Message: fmt.Sprintf("Доступ запрещён: %s", reason),
		Details: map[string]any{
			"reason": reason,
		},
	}
}

func NewConflict(resource Resource, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s: %s", resource, reason),
		Details: map[string]any{
			"resource": resource,
			"reason":   reason,
		},
	}
}

func NewInvalidState(resource Resource, id, state string) *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("%s %s в недопустимом состоянии %s", resource, id, state),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
			"state":    state,
		},
	}
}

func NewVersionConflict(resource Resource, id string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("%s %s была изменена параллельно", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
		Err: err,
	}
}

// CodeOf - код бизнес-ошибки или пустая строка
func CodeOf(err error) string {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr.Code
	}
	return ""
}
