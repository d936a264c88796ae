package handlers

import (
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService   UserService
	OptOutService OptOutService
}

func NewUserHandler(users UserService, optOuts OptOutService) UserHandler {
	return UserHandler{
		UserService:   users,
		OptOutService: optOuts,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	users, err := h.UserService.GetUsers(r.Context(), user)
	if err != nil {
		handleError(w, r, err, "get_users")
		return
	}

	logOut("Пользователи получены", start, http.StatusOK, zap.Int("count", len(users)))
	responseWithBody(w, http.StatusOK, dto.FromUserList(users))
}

// GetMe отдаёт пользователя из токена, он уже заведён middleware
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	logOut("Текущий пользователь", start, http.StatusOK, zap.String("user_id", user.ID.String()))
	responseWithBody(w, http.StatusOK, dto.FromUser(user))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	found, err := h.UserService.GetUser(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err, "get_user")
		return
	}

	logOut("Пользователь получен", start, http.StatusOK, zap.String("user_id", id.String()))
	responseWithBody(w, http.StatusOK, dto.FromUser(found))
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	var request dto.UpdateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.UserService.UpdateUserRole(r.Context(), user, id, models.Role(request.Roles))
	if err != nil {
		handleError(w, r, err, "update_user")
		return
	}

	logOut("Роль пользователя обновлена", start, http.StatusOK,
		zap.String("user_id", id.String()),
		zap.String("role", updated.Roles.String()))
	responseWithBody(w, http.StatusOK, dto.FromUser(updated))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), user, id); err != nil {
		handleError(w, r, err, "delete_user")
		return
	}

	logOut("Пользователь удалён", start, http.StatusNoContent, zap.String("user_id", id.String()))
	responseNoContent(w)
}

func (h *UserHandler) GetOptOuts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	optOuts, err := h.OptOutService.GetOptOuts(r.Context(), user, userID)
	if err != nil {
		handleError(w, r, err, "get_opt_outs")
		return
	}

	logOut("Отказы получены", start, http.StatusOK, zap.Int("count", len(optOuts)))
	responseWithBody(w, http.StatusOK, dto.FromOptOutList(optOuts))
}

func (h *UserHandler) CreateOptOut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	var request dto.OptOutRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	optOut, err := h.OptOutService.CreateOptOut(r.Context(), user, userID,
		request.Period.StartDate, request.Period.EndDate)
	if err != nil {
		handleError(w, r, err, "create_opt_out")
		return
	}

	logOut("Отказ создан", start, http.StatusCreated, zap.String("opt_out_id", optOut.ID.String()))
	responseWithBody(w, http.StatusCreated, dto.FromOptOut(optOut))
}

func (h *UserHandler) UpdateOptOut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}
	optOutID, ok := pathUUID(w, r, "optOutId")
	if !ok {
		return
	}

	var request dto.OptOutRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	optOut, err := h.OptOutService.UpdateOptOut(r.Context(), user, userID, optOutID,
		request.Period.StartDate, request.Period.EndDate)
	if err != nil {
		handleError(w, r, err, "update_opt_out")
		return
	}

	logOut("Отказ обновлён", start, http.StatusOK, zap.String("opt_out_id", optOutID.String()))
	responseWithBody(w, http.StatusOK, dto.FromOptOut(optOut))
}

func (h *UserHandler) DeleteOptOut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}
	optOutID, ok := pathUUID(w, r, "optOutId")
	if !ok {
		return
	}

	if err := h.OptOutService.DeleteOptOut(r.Context(), user, userID, optOutID); err != nil {
		handleError(w, r, err, "delete_opt_out")
		return
	}

	logOut("Отказ удалён", start, http.StatusNoContent, zap.String("opt_out_id", optOutID.String()))
	responseNoContent(w)
}
