package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/middleware"
	"timeRegistration/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON пишет ответ сам и возвращает false, если тело не прочитано
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("param", name),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, fmt.Sprintf("не удалось получить %s: %v", name, err))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("param", name),
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, name+" не может быть пустым")
		return uuid.Nil, false
	}
	return id, true
}

// actor - пользователь, которого положил middleware.CurrentUser
func actor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		logger.Warn("HTTP: Пользователь не найден в контексте",
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		responseWithError(w, http.StatusUnauthorized, "пользователь не определён")
		return nil, false
	}
	return user, true
}

func queryUUID(values url.Values, key string) (*uuid.UUID, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &id, nil
}

func queryTime(values url.Values, key string) (*time.Time, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

// parseSessionFilter читает customerId, projectId, taskId, userId, state, startDate, endDate
func parseSessionFilter(values url.Values) (models.SessionFilter, error) {
	var (
		filter models.SessionFilter
		err    error
	)

	if filter.CustomerID, err = queryUUID(values, "customerId"); err != nil {
		return filter, err
	}
	if filter.ProjectID, err = queryUUID(values, "projectId"); err != nil {
		return filter, err
	}
	if filter.TaskID, err = queryUUID(values, "taskId"); err != nil {
		return filter, err
	}
	if filter.UserID, err = queryUUID(values, "userId"); err != nil {
		return filter, err
	}
	if raw := values.Get("state"); raw != "" {
		state, err := models.ParseSessionState(raw)
		if err != nil {
			return filter, fmt.Errorf("state: %w", err)
		}
		filter.State = &state
	}
	if filter.StartDate, err = queryTime(values, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryTime(values, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}

func logOut(message string, start time.Time, status int, fields ...zap.Field) {
	fields = append(fields,
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", status))
	logger.Info("HTTP_OUT: "+message, fields...)
}
