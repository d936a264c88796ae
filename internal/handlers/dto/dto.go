package dto

import (
	"time"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
)

type PeriodRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type PeriodResponse struct {
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func FromPeriod(p models.Period) PeriodResponse {
	return PeriodResponse{StartDate: p.StartDate, EndDate: p.EndDate}
}

// сессии

type CreateSessionRequest struct {
	UserID      uuid.UUID      `json:"user_id"`
	TaskID      uuid.UUID      `json:"task_id"`
	Period      *PeriodRequest `json:"period,omitempty"`
	Description string         `json:"description"`
}

type UpdateSessionRequest struct {
	State       *string        `json:"state,omitempty"`
	Description *string        `json:"description,omitempty"`
	Period      *PeriodRequest `json:"period,omitempty"`
}

type InvoiceSessionsRequest struct {
	SessionIDs []uuid.UUID `json:"session_ids"`
}

type SessionResponse struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	TaskID      uuid.UUID      `json:"task_id"`
	ProjectID   uuid.UUID      `json:"project_id"`
	CustomerID  uuid.UUID      `json:"customer_id"`
	Period      PeriodResponse `json:"period"`
	Description string         `json:"description"`
	State       string         `json:"state"`
	Version     int            `json:"version"`
}

func FromSession(s *models.ProjectSession) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		TaskID:      s.TaskID,
		ProjectID:   s.ProjectID,
		CustomerID:  s.CustomerID,
		Period:      FromPeriod(s.Period),
		Description: s.Description,
		State:       s.State.String(),
		Version:     s.Version,
	}
}

func FromSessionList(sessions []*models.ProjectSession) []SessionResponse {
	result := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		result[i] = FromSession(s)
	}
	return result
}

// задачи

type CreateTaskRequest struct {
	Type        int        `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type UpdateTaskRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	State       *string    `json:"state,omitempty"`
}

// Options переводит запрос в частичное обновление задачи
func (r UpdateTaskRequest) Options() ([]models.TaskOption, error) {
	options := []models.TaskOption{}
	if r.Name != nil {
		options = append(options, models.WithTaskName(*r.Name))
	}
	if r.Description != nil {
		options = append(options, models.WithTaskDescription(*r.Description))
	}
	if r.Deadline != nil {
		options = append(options, models.WithDeadline(*r.Deadline))
	}
	if r.State != nil {
		state, err := models.ParseTaskState(*r.State)
		if err != nil {
			return nil, err
		}
		options = append(options, models.WithTaskState(state))
	}
	return options, nil
}

type AssignUserRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type AssignUsersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

type TaskResponse struct {
	ID            uuid.UUID   `json:"id"`
	ProjectID     uuid.UUID   `json:"project_id"`
	Type          int         `json:"type"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Deadline      *time.Time  `json:"deadline,omitempty"`
	State         string      `json:"state,omitempty"`
	AssignedUsers []uuid.UUID `json:"assigned_users"`
}

func FromTask(t *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Type:          int(t.Type),
		Name:          t.Name,
		Description:   t.Description,
		AssignedUsers: t.AssignedUsers,
	}
	if t.IsCompletable() {
		resp.Deadline = t.Completion.Deadline
		resp.State = t.Completion.State.String()
	}
	return resp
}

func FromTaskList(tasks []*models.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

// пользователи

type UpdateUserRequest struct {
	Roles int `json:"roles"`
}

type UserResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Roles         models.Role `json:"roles"`
	AssignedTasks []uuid.UUID `json:"assigned_tasks"`
}

func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Roles:         u.Roles,
		AssignedTasks: u.AssignedTasks,
	}
}

func FromUserList(users []*models.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

// отказы

type OptOutRequest struct {
	Period PeriodRequest `json:"period"`
}

type OptOutResponse struct {
	ID     uuid.UUID      `json:"id"`
	UserID uuid.UUID      `json:"user_id"`
	Period PeriodResponse `json:"period"`
}

func FromOptOut(o *models.OptOut) OptOutResponse {
	return OptOutResponse{ID: o.ID, UserID: o.UserID, Period: FromPeriod(o.Period)}
}

func FromOptOutList(optOuts []*models.OptOut) []OptOutResponse {
	result := make([]OptOutResponse, len(optOuts))
	for i, o := range optOuts {
		result[i] = FromOptOut(o)
	}
	return result
}

// отметки по пропуску

type CheckInResponse struct {
	ID     uuid.UUID      `json:"id"`
	UserID uuid.UUID      `json:"user_id"`
	Period PeriodResponse `json:"period"`
}

func FromCheckInList(checkIns []*models.CheckInSession) []CheckInResponse {
	result := make([]CheckInResponse, len(checkIns))
	for i, c := range checkIns {
		result[i] = CheckInResponse{ID: c.ID, UserID: c.UserID, Period: FromPeriod(c.Period)}
	}
	return result
}

// заказчики, проекты, комментарии

type CustomerRequest struct {
	Name string `json:"name"`
}

type ProjectRequest struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type CommentRequest struct {
	Content string `json:"content"`
}
