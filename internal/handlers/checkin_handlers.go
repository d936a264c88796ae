package handlers

import (
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"

	"go.uber.org/zap"
)

type CheckInHandler struct {
	CheckInService CheckInService
}

func NewCheckInHandler(checkIns CheckInService) CheckInHandler {
	return CheckInHandler{CheckInService: checkIns}
}

func (h *CheckInHandler) GetCheckIns(w http.ResponseWriter, r *http.Request) {
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

	checkIns, err := h.CheckInService.GetCheckIns(r.Context(), user, userID)
	if err != nil {
		handleError(w, r, err, "get_check_ins")
		return
	}

	logOut("Отметки получены", start, http.StatusOK, zap.Int("count", len(checkIns)))
	responseWithBody(w, http.StatusOK, dto.FromCheckInList(checkIns))
}
