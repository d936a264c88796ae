package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TaskType - дискриминатор таблицы tasks
type TaskType int

const (
	TaskRecurring   TaskType = 0
	TaskCompletable TaskType = 1
)

func ParseTaskType(value int) (TaskType, error) {
	switch TaskType(value) {
	case TaskRecurring, TaskCompletable:
		return TaskType(value), nil
	}
	return TaskRecurring, fmt.Errorf("неизвестный тип задачи: %d", value)
}

type TaskState int

const (
	TaskPending    TaskState = 0
	TaskInProgress TaskState = 1
	TaskDone       TaskState = 2
)

func (s TaskState) Valid() bool {
	return s >= TaskPending && s <= TaskDone
}

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "PENDING"
	case TaskInProgress:
		return "IN_PROGRESS"
	case TaskDone:
		return "DONE"
	}
	return fmt.Sprintf("TaskState(%d)", int(s))
}

func ParseTaskState(value string) (TaskState, error) {
	switch value {
	case "PENDING", "0":
		return TaskPending, nil
	case "IN_PROGRESS", "1":
		return TaskInProgress, nil
	case "DONE", "2":
		return TaskDone, nil
	}
	return TaskPending, fmt.Errorf("неизвестное состояние задачи: %q", value)
}

// Completion есть только у задач с типом TaskCompletable
type Completion struct {
	Deadline *time.Time `json:"deadline,omitempty"`
	State    TaskState  `json:"state"`
}

type Task struct {
	ID            uuid.UUID   `json:"id"`
	ProjectID     uuid.UUID   `json:"project_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Type          TaskType    `json:"type"`
	Completion    *Completion `json:"completion,omitempty"`
	AssignedUsers []uuid.UUID `json:"assigned_users"`
	CreatedAt     time.Time   `json:"created_at"`
}

func NewRecurringTask(projectID uuid.UUID, name, description string) *Task {
	return &Task{
		ID:            uuid.New(),
		ProjectID:     projectID,
		Name:          name,
		Description:   description,
		Type:          TaskRecurring,
		AssignedUsers: []uuid.UUID{},
	}
}

func NewCompletableTask(projectID uuid.UUID, name, description string, deadline *time.Time) *Task {
	t := NewRecurringTask(projectID, name, description)
	t.Type = TaskCompletable
	t.Completion = &Completion{Deadline: deadline, State: TaskPending}
	return t
}

func (t *Task) IsCompletable() bool {
	return t.Type == TaskCompletable && t.Completion != nil
}

func (t *Task) HasUser(userID uuid.UUID) bool {
	return slices.Contains(t.AssignedUsers, userID)
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.AssignedUsers = slices.Clone(t.AssignedUsers)
	if t.Completion != nil {
		completion := *t.Completion
		if t.Completion.Deadline != nil {
			deadline := *t.Completion.Deadline
			completion.Deadline = &deadline
		}
		c.Completion = &completion
	}
	return &c
}
