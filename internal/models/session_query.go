package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionColumn - логическое поле сессии, по которому строится фильтр.
// Хранилище само решает, как поле ложится на таблицы.
type SessionColumn string

const (
	ColumnCustomerID SessionColumn = "customer_id"
	ColumnProjectID  SessionColumn = "project_id"
	ColumnTaskID     SessionColumn = "task_id"
	ColumnUserID     SessionColumn = "user_id"
	ColumnState      SessionColumn = "state"
	ColumnStartDate  SessionColumn = "start_date"
	ColumnEndDate    SessionColumn = "end_date"
)

type Operator string

const (
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpIsNull       Operator = "IS NULL"
)

// SessionPredicate - одно условие фильтра. Одно и то же условие
// проверяется в памяти через Match и переводится в SQL в postgres.
type SessionPredicate struct {
	Column   SessionColumn
	Operator Operator
	Value    any
	match    func(*ProjectSession) bool
}

func (p SessionPredicate) Match(s *ProjectSession) bool {
	return p.match(s)
}

func equalUUID(column SessionColumn, id uuid.UUID, field func(*ProjectSession) uuid.UUID) SessionPredicate {
	return SessionPredicate{
		Column:   column,
		Operator: OpEqual,
		Value:    id,
		match: func(s *ProjectSession) bool {
			return field(s) == id
		},
	}
}

// SessionFilter - необязательные поля фильтра, nil значит "не фильтровать"
type SessionFilter struct {
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
	TaskID     *uuid.UUID
	UserID     *uuid.UUID
	State      *SessionState
	StartDate  *time.Time
	EndDate    *time.Time
}

// Predicates собирает условия только по заданным полям, они объединяются через AND
func (f SessionFilter) Predicates() []SessionPredicate {
	predicates := make([]SessionPredicate, 0, 7)

	if f.CustomerID != nil {
		predicates = append(predicates, equalUUID(ColumnCustomerID, *f.CustomerID,
			func(s *ProjectSession) uuid.UUID { return s.CustomerID }))
	}
	if f.ProjectID != nil {
		predicates = append(predicates, equalUUID(ColumnProjectID, *f.ProjectID,
			func(s *ProjectSession) uuid.UUID { return s.ProjectID }))
	}
	if f.TaskID != nil {
		predicates = append(predicates, equalUUID(ColumnTaskID, *f.TaskID,
			func(s *ProjectSession) uuid.UUID { return s.TaskID }))
	}
	if f.UserID != nil {
		predicates = append(predicates, equalUUID(ColumnUserID, *f.UserID,
			func(s *ProjectSession) uuid.UUID { return s.UserID }))
	}
	if f.State != nil {
		state := *f.State
		predicates = append(predicates, SessionPredicate{
			Column:   ColumnState,
			Operator: OpEqual,
			Value:    int(state),
			match: func(s *ProjectSession) bool {
				return s.State == state
			},
		})
	}
	if f.StartDate != nil {
		start := *f.StartDate
		predicates = append(predicates, SessionPredicate{
			Column:   ColumnStartDate,
			Operator: OpGreaterEqual,
			Value:    start,
			match: func(s *ProjectSession) bool {
				return !s.Period.StartDate.Before(start)
			},
		})
	}
	if f.EndDate != nil {
		end := *f.EndDate
		predicates = append(predicates, SessionPredicate{
			Column:   ColumnEndDate,
			Operator: OpLessEqual,
			Value:    end,
			// открытая сессия под "end_date <=" не попадает, как NULL в SQL
			match: func(s *ProjectSession) bool {
				return s.Period.EndDate != nil && !s.Period.EndDate.After(end)
			},
		})
	}

	return predicates
}

// ActiveSince - сессии, начатые не позже threshold и до сих пор не закрытые
func ActiveSince(threshold time.Time) []SessionPredicate {
	return []SessionPredicate{
		{
			Column:   ColumnStartDate,
			Operator: OpLessEqual,
			Value:    threshold,
			match: func(s *ProjectSession) bool {
				return !s.Period.StartDate.After(threshold)
			},
		},
		{
			Column:   ColumnEndDate,
			Operator: OpIsNull,
			match: func(s *ProjectSession) bool {
				return s.Period.EndDate == nil
			},
		},
	}
}

// MatchAll - пустой список условий пропускает всё
func MatchAll(s *ProjectSession, predicates []SessionPredicate) bool {
	for _, p := range predicates {
		if !p.Match(s) {
			return false
		}
	}
	return true
}
