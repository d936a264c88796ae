package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID   `json:"id"`
	PrincipalID   uuid.UUID   `json:"principal_id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Roles         Role        `json:"roles"`
	AssignedTasks []uuid.UUID `json:"assigned_tasks"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewUserFromPrincipal - новый пользователь без ролей, роли выдаёт менеджер
func NewUserFromPrincipal(p Principal) *User {
	return &User{
		ID:            uuid.New(),
		PrincipalID:   p.Subject,
		Name:          p.Name,
		Email:         p.Email,
		Roles:         RoleNone,
		AssignedTasks: []uuid.UUID{},
	}
}

func (u *User) HasRole(required ...Role) bool {
	return HasRole(u.Roles, required...)
}

func (u *User) IsAssigned(taskID uuid.UUID) bool {
	return slices.Contains(u.AssignedTasks, taskID)
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.AssignedTasks = slices.Clone(u.AssignedTasks)
	return &c
}
