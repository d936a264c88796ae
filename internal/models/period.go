package models

import (
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New("дата окончания раньше даты начала")

// Period - интервал времени; EndDate == nil означает "продолжается"
type Period struct {
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func NewPeriod(start time.Time, end *time.Time) Period {
	return Period{StartDate: start, EndDate: end}
}

// Validate проверяется при создании и обновлении, сам тип инвариант не держит
func (p Period) Validate() error {
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) IsOpen() bool {
	return p.EndDate == nil
}

// Contains - момент t внутри [StartDate, EndDate], открытый конец бесконечен
func (p Period) Contains(t time.Time) bool {
	if t.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || !t.After(*p.EndDate)
}

func (p Period) Duration(now time.Time) time.Duration {
	if p.EndDate == nil {
		return now.Sub(p.StartDate)
	}
	return p.EndDate.Sub(p.StartDate)
}
