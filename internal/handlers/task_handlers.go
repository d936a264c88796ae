package handlers

import (
	"context"
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectId")
	if !ok {
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задач")

	tasks, err := h.TaskService.GetTasks(r.Context(), user, projectID)
	if err != nil {
		handleError(w, r, err, "get_tasks")
		return
	}

	logOut("Задачи получены", start, http.StatusOK, zap.Int("count", len(tasks)))
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	task, err := h.TaskService.GetTask(r.Context(), user, projectID, taskID)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}

	logOut("Задача получена", start, http.StatusOK, zap.String("task_id", task.ID.String()))
	responseWithBody(w, http.StatusOK, dto.FromTask(task))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectId")
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	taskType, err := models.ParseTaskType(request.Type)
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "type"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")

	task, err := h.TaskService.CreateTask(r.Context(), user, projectID, service.CreateTaskInput{
		Type:        taskType,
		Name:        request.Name,
		Description: request.Description,
		Deadline:    request.Deadline,
	})
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logOut("Задача создана", start, http.StatusCreated, zap.String("task_id", task.ID.String()))
	responseWithBody(w, http.StatusCreated, dto.FromTask(task))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	options, err := request.Options()
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "state"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP: запрос к сервису обновления задачи")

	task, err := h.TaskService.UpdateTask(r.Context(), user, projectID, taskID, options...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logOut("Задача обновлена", start, http.StatusOK, zap.String("task_id", task.ID.String()))
	responseWithBody(w, http.StatusOK, dto.FromTask(task))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")

	if err := h.TaskService.DeleteTask(r.Context(), user, projectID, taskID); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logOut("Задача удалена", start, http.StatusNoContent, zap.String("task_id", taskID.String()))
	responseNoContent(w)
}

func (h *TaskHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	var request dto.AssignUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := h.TaskService.AssignUser(r.Context(), user, projectID, taskID, request.UserID); err != nil {
		handleError(w, r, err, "assign_user")
		return
	}

	logOut("Пользователь назначен", start, http.StatusNoContent,
		zap.String("task_id", taskID.String()),
		zap.String("user_id", request.UserID.String()))
	responseNoContent(w)
}

func (h *TaskHandler) UnassignUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.TaskService.UnassignUser(r.Context(), user, projectID, taskID, userID); err != nil {
		handleError(w, r, err, "unassign_user")
		return
	}

	logOut("Пользователь снят с задачи", start, http.StatusNoContent,
		zap.String("task_id", taskID.String()),
		zap.String("user_id", userID.String()))
	responseNoContent(w)
}

func (h *TaskHandler) AssignUsers(w http.ResponseWriter, r *http.Request) {
	h.batchAssignment(w, r, "assign_users", h.TaskService.AssignUsers)
}

func (h *TaskHandler) UnassignUsers(w http.ResponseWriter, r *http.Request) {
	h.batchAssignment(w, r, "unassign_users", h.TaskService.UnassignUsers)
}

type batchFunc func(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, userIDs []uuid.UUID) error

// batchAssignment - назначение или снятие списка пользователей одним запросом
func (h *TaskHandler) batchAssignment(w http.ResponseWriter, r *http.Request, operation string, apply batchFunc) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, projectID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	var request dto.AssignUsersRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := apply(r.Context(), user, projectID, taskID, request.UserIDs); err != nil {
		handleError(w, r, err, operation)
		return
	}

	logOut("Назначения обновлены", start, http.StatusNoContent,
		zap.String("operation", operation),
		zap.String("task_id", taskID.String()),
		zap.Int("count", len(request.UserIDs)))
	responseNoContent(w)
}

func taskPath(w http.ResponseWriter, r *http.Request) (*models.User, uuid.UUID, uuid.UUID, bool) {
	user, ok := actor(w, r)
	if !ok {
		return nil, uuid.Nil, uuid.Nil, false
	}
	projectID, ok := pathUUID(w, r, "projectId")
	if !ok {
		return nil, uuid.Nil, uuid.Nil, false
	}
	taskID, ok := pathUUID(w, r, "taskId")
	if !ok {
		return nil, uuid.Nil, uuid.Nil, false
	}
	return user, projectID, taskID, true
}
