package handlers

import (
	"errors"
	"net/http"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/middleware"
	"timeRegistration/internal/service"

	"go.uber.org/zap"
)

// handleError переводит ошибку сервиса в HTTP ответ
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode),
			zap.String("request_id", middleware.GetRequestID(r.Context())))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr),
		zap.String("request_id", middleware.GetRequestID(r.Context())))

	responseWithJSON(w, http.StatusInternalServerError,
		toPayload("error", "INTERNAL"),
		toPayload("message", "внутренняя ошибка сервера"),
		toPayload("request_id", middleware.GetRequestID(r.Context())),
	)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeValidation, service.CodeConflict, service.CodeInvalidState:
		return http.StatusBadRequest
	case service.CodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
