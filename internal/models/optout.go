package models

import (
	"time"

	"github.com/google/uuid"
)

type OptOut struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Period Period    `json:"period"`
}

// ActiveAt: now >= start и (конца нет или now <= end).
// Будущий отказ без даты окончания ещё не активен.
func (o *OptOut) ActiveAt(now time.Time) bool {
	return o.Period.Contains(now)
}

// StartsBefore - начало строго раньше candidate
func (o *OptOut) StartsBefore(candidate time.Time) bool {
	return o.Period.StartDate.Before(candidate)
}

func (o *OptOut) Clone() *OptOut {
	if o == nil {
		return nil
	}
	c := *o
	if o.Period.EndDate != nil {
		end := *o.Period.EndDate
		c.Period.EndDate = &end
	}
	return &c
}
