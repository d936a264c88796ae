package models

import "github.com/google/uuid"

// Principal - внешняя личность из токена, привязана к одному User
type Principal struct {
	Subject  uuid.UUID
	Name     string
	Email    string
	Audience []string
}
