package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

type UserResolver interface {
	GetAuthorizedUser(ctx context.Context, principal models.Principal) (*models.User, error)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}

// Authenticate проверяет Bearer токен и кладёт principal в контекст
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				unauthorized(w, r, "требуется Bearer токен")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("HTTP: Токен отклонён",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthorized(w, r, "неверный токен")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser находит (или заводит) пользователя по principal из контекста
func CurrentUser(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				unauthorized(w, r, "пользователь не определён")
				return
			}

			user, err := users.GetAuthorizedUser(r.Context(), principal)
			if err != nil {
				logger.Error("HTTP: Не удалось получить пользователя", err,
					zap.String("request_id", GetRequestID(r.Context())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"error":      "INTERNAL",
					"request_id": GetRequestID(r.Context()),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func GetUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
