package lock

import (
	"context"
	"time"
	"timeRegistration/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Locker - взаимное исключение фоновых задач между репликами сервиса
type Locker interface {
	// TryLock возвращает release и true, если блокировка взята
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

// NopLocker - одна реплика, блокировка всегда свободна
type NopLocker struct{}

func (NopLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// снимаем блокировку, только если она всё ещё наша
var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisLocker struct {
	client rueidis.Client
}

func NewRedisClient(addr string) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
}

func NewRedisLocker(client rueidis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()

	cmd := l.client.B().Set().Key(key).Value(token).Nx().Px(ttl).Build()
	if err := l.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	release := func() {
		// контекст задачи к этому моменту может быть отменён
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := releaseScript.Exec(releaseCtx, l.client, []string{key}, []string{token}).Error()
		if err != nil {
			logger.Warn("Lock: Не удалось снять блокировку", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}
