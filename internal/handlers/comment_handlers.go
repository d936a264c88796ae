package handlers

import (
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"

	"go.uber.org/zap"
)

type CommentHandler struct {
	CommentService CommentService
}

func NewCommentHandler(commentService CommentService) CommentHandler {
	return CommentHandler{CommentService: commentService}
}

func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, _, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	comments, err := h.CommentService.GetComments(r.Context(), user, taskID)
	if err != nil {
		handleError(w, r, err, "get_comments")
		return
	}

	logOut("Комментарии получены", start, http.StatusOK, zap.Int("count", len(comments)))
	responseWithBody(w, http.StatusOK, comments)
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, _, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	var request dto.CommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	comment, err := h.CommentService.CreateComment(r.Context(), user, taskID, request.Content)
	if err != nil {
		handleError(w, r, err, "create_comment")
		return
	}

	logOut("Комментарий создан", start, http.StatusCreated, zap.String("comment_id", comment.ID.String()))
	responseWithBody(w, http.StatusCreated, comment)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, _, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "commentId")
	if !ok {
		return
	}

	var request dto.CommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	comment, err := h.CommentService.UpdateComment(r.Context(), user, taskID, id, request.Content)
	if err != nil {
		handleError(w, r, err, "update_comment")
		return
	}

	logOut("Комментарий обновлён", start, http.StatusOK, zap.String("comment_id", id.String()))
	responseWithBody(w, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, _, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "commentId")
	if !ok {
		return
	}

	if err := h.CommentService.DeleteComment(r.Context(), user, taskID, id); err != nil {
		handleError(w, r, err, "delete_comment")
		return
	}

	logOut("Комментарий удалён", start, http.StatusNoContent, zap.String("comment_id", id.String()))
	responseNoContent(w)
}
