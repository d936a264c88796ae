package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotCompleted = errors.New("сессия не завершена")

// SessionType - дискриминатор таблицы sessions
type SessionType int

const (
	SessionTypeCheckIn SessionType = 0
	SessionTypeProject SessionType = 1
)

type SessionState int

const (
	SessionActive    SessionState = 0
	SessionCompleted SessionState = 1
	SessionInvoiced  SessionState = 2
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "ACTIVE"
	case SessionCompleted:
		return "COMPLETED"
	case SessionInvoiced:
		return "INVOICED"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

func (s SessionState) Valid() bool {
	return s >= SessionActive && s <= SessionInvoiced
}

func ParseSessionState(value string) (SessionState, error) {
	switch value {
	case "ACTIVE", "0":
		return SessionActive, nil
	case "COMPLETED", "1":
		return SessionCompleted, nil
	case "INVOICED", "2":
		return SessionInvoiced, nil
	}
	return SessionActive, fmt.Errorf("неизвестное состояние сессии: %q", value)
}

// Session - общий вид записей таблицы sessions
type Session interface {
	SessionID() uuid.UUID
	SessionType() SessionType
	Owner() uuid.UUID
	SessionPeriod() Period
}

// CheckInSession - отметка по пропуску, без рабочего состояния
type CheckInSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Period    Period    `json:"period"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *CheckInSession) SessionID() uuid.UUID {
	return c.ID
}

func (c *CheckInSession) SessionType() SessionType {
	return SessionTypeCheckIn
}

func (c *CheckInSession) Owner() uuid.UUID {
	return c.UserID
}

func (c *CheckInSession) SessionPeriod() Period {
	return c.Period
}

type ProjectSession struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	TaskID      uuid.UUID    `json:"task_id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	CustomerID  uuid.UUID    `json:"customer_id"`
	Period      Period       `json:"period"`
	Description string       `json:"description"`
	State       SessionState `json:"state"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

func (p *ProjectSession) SessionID() uuid.UUID {
	return p.ID
}

func (p *ProjectSession) SessionType() SessionType {
	return SessionTypeProject
}

func (p *ProjectSession) Owner() uuid.UUID {
	return p.UserID
}

func (p *ProjectSession) SessionPeriod() Period {
	return p.Period
}

func NewProjectSession(userID, taskID uuid.UUID, start time.Time, description string) *ProjectSession {
	return &ProjectSession{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      taskID,
		Period:      Period{StartDate: start},
		Description: description,
		State:       SessionActive,
	}
}

// Complete закрывает активную сессию. Повторный вызов ничего не меняет.
func (p *ProjectSession) Complete(now time.Time) bool {
	if p.State != SessionActive {
		return false
	}
	end := now
	p.State = SessionCompleted
	p.Period.EndDate = &end
	return true
}

// Invoice доступен только из COMPLETED
func (p *ProjectSession) Invoice() error {
	if p.State != SessionCompleted {
		return ErrSessionNotCompleted
	}
	p.State = SessionInvoiced
	return nil
}

func (p *ProjectSession) IsActive() bool {
	return p.State == SessionActive
}

func (p *ProjectSession) Clone() *ProjectSession {
	if p == nil {
		return nil
	}
	c := *p
	if p.Period.EndDate != nil {
		end := *p.Period.EndDate
		c.Period.EndDate = &end
	}
	if p.UpdatedAt != nil {
		updated := *p.UpdatedAt
		c.UpdatedAt = &updated
	}
	return &c
}

var (
	_ Session = (*CheckInSession)(nil)
	_ Session = (*ProjectSession)(nil)
)
