package models

import "time"

// TaskOption - частичное обновление задачи. nil-опции пропускаются.
type TaskOption func(*Task)

func WithTaskName(name string) TaskOption {
	if name == "" {
		return nil
	}
	return func(t *Task) {
		t.Name = name
	}
}

func WithTaskDescription(description string) TaskOption {
	return func(t *Task) {
		t.Description = description
	}
}

// WithDeadline и WithTaskState действуют только на выполнимые задачи
func WithDeadline(deadline time.Time) TaskOption {
	if deadline.IsZero() {
		return nil
	}
	return func(t *Task) {
		if t.IsCompletable() {
			t.Completion.Deadline = &deadline
		}
	}
}

func WithTaskState(state TaskState) TaskOption {
	return func(t *Task) {
		if t.IsCompletable() {
			t.Completion.State = state
		}
	}
}

func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
