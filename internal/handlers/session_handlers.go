package handlers

import (
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"
	"timeRegistration/internal/service"

	"go.uber.org/zap"
)

type SessionHandler struct {
	SessionService SessionService
}

func NewSessionHandler(sessionService SessionService) SessionHandler {
	return SessionHandler{
		SessionService: sessionService,
	}
}

func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	filter, err := parseSessionFilter(r.URL.Query())
	if err != nil {
		logger.Warn("HTTP: Ошибка получения параметра",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверный фильтр: "+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения сессий")

	sessions, err := h.SessionService.GetSessions(r.Context(), user, filter)
	if err != nil {
		handleError(w, r, err, "get_sessions")
		return
	}

	logOut("Сессии получены", start, http.StatusOK, zap.Int("count", len(sessions)))
	responseWithBody(w, http.StatusOK, dto.FromSessionList(sessions))
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "sessionId")
	if !ok {
		return
	}

	session, err := h.SessionService.GetSession(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err, "get_session")
		return
	}

	logOut("Сессия получена", start, http.StatusOK, zap.String("session_id", id.String()))
	responseWithBody(w, http.StatusOK, dto.FromSession(session))
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	var request dto.CreateSessionRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	input := service.CreateSessionInput{
		UserID:      request.UserID,
		TaskID:      request.TaskID,
		Description: request.Description,
	}
	if request.Period != nil {
		input.StartDate = request.Period.StartDate
		input.EndDate = request.Period.EndDate
	}

	logger.Info("HTTP: Вызов сервиса создания сессии")

	session, err := h.SessionService.CreateSession(r.Context(), user, input)
	if err != nil {
		handleError(w, r, err, "create_session")
		return
	}

	logOut("Сессия создана", start, http.StatusCreated, zap.String("session_id", session.ID.String()))
	responseWithBody(w, http.StatusCreated, dto.FromSession(session))
}

func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "sessionId")
	if !ok {
		return
	}

	var request dto.UpdateSessionRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	patch := service.SessionPatch{Description: request.Description}
	if request.State != nil {
		state, err := models.ParseSessionState(*request.State)
		if err != nil {
			logger.Warn("HTTP: Ошибка валидации",
				zap.String("field", "state"),
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.State = &state
	}
	if request.Period != nil {
		patch.StartDate = request.Period.StartDate
		patch.EndDate = request.Period.EndDate
	}

	logger.Info("HTTP: запрос к сервису обновления сессии")

	session, err := h.SessionService.UpdateSession(r.Context(), user, id, patch)
	if err != nil {
		handleError(w, r, err, "update_session")
		return
	}

	logOut("Сессия обновлена", start, http.StatusOK,
		zap.String("session_id", id.String()),
		zap.String("state", session.State.String()))
	responseWithBody(w, http.StatusOK, dto.FromSession(session))
}

// InvoiceSessions - пакетный перевод COMPLETED -> INVOICED, всё или ничего
func (h *SessionHandler) InvoiceSessions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	var request dto.InvoiceSessionsRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса выставления счёта",
		zap.Int("count", len(request.SessionIDs)))

	sessions, err := h.SessionService.InvoiceSessions(r.Context(), user, request.SessionIDs)
	if err != nil {
		handleError(w, r, err, "invoice_sessions")
		return
	}

	logOut("Сессии переведены в INVOICED", start, http.StatusOK, zap.Int("count", len(sessions)))
	responseWithBody(w, http.StatusOK, dto.FromSessionList(sessions))
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "sessionId")
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления сессии")

	if err := h.SessionService.DeleteSession(r.Context(), user, id); err != nil {
		handleError(w, r, err, "delete_session")
		return
	}

	logOut("Сессия удалена", start, http.StatusNoContent, zap.String("session_id", id.String()))
	responseNoContent(w)
}
