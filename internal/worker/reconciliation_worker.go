package worker

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/lock"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = time.Minute
	DefaultMaxSessionAge = 8 * time.Hour
	sweepLockKey         = "time-registration:reconciliation"
)

// SessionService - сервис сессий, через который идёт сверка
type SessionService interface {
	GetActiveSessions(ctx context.Context, startedBefore time.Time) ([]*models.ProjectSession, error)
	CloseStaleSession(ctx context.Context, session *models.ProjectSession, now time.Time) (bool, error)
}

// ReconciliationWorker закрывает проектные сессии, открытые дольше maxAge
type ReconciliationWorker struct {
	sessions SessionService
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	locker   lock.Locker
	lockKey  string
	lockTTL  time.Duration
}

type ReconciliationOption func(*ReconciliationWorker)

func WithInterval(interval time.Duration) ReconciliationOption {
	return func(w *ReconciliationWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMaxSessionAge(maxAge time.Duration) ReconciliationOption {
	return func(w *ReconciliationWorker) {
		if maxAge > 0 {
			w.maxAge = maxAge
		}
	}
}

func WithClock(now func() time.Time) ReconciliationOption {
	return func(w *ReconciliationWorker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLocker - только одна реплика выполняет проход
func WithLocker(locker lock.Locker, key string, ttl time.Duration) ReconciliationOption {
	return func(w *ReconciliationWorker) {
		if locker != nil {
			w.locker = locker
		}
		if key != "" {
			w.lockKey = key
		}
		if ttl > 0 {
			w.lockTTL = ttl
		}
	}
}

func NewReconciliationWorker(sessions SessionService, options ...ReconciliationOption) *ReconciliationWorker {
	w := &ReconciliationWorker{
		sessions: sessions,
		interval: DefaultSweepInterval,
		maxAge:   DefaultMaxSessionAge,
		now:      time.Now,
		locker:   lock.NopLocker{},
		lockKey:  sweepLockKey,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.lockTTL == 0 {
		w.lockTTL = w.interval
	}
	return w
}

type SweepResult struct {
	SweptAt time.Time
	Checked int
	Closed  int
	Failed  int
	Skipped bool
}

func (w *ReconciliationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Сверка сессий запущена",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Сверка сессий останавливается")
			return
		}
	}
}

// Sweep - один проход. Ошибка на одной сессии не прерывает остальные,
// незакрытые сессии попадут в следующий проход.
func (w *ReconciliationWorker) Sweep(ctx context.Context) SweepResult {
	start := time.Now()
	now := w.now()
	result := SweepResult{SweptAt: now}

	release, acquired, err := w.locker.TryLock(ctx, w.lockKey, w.lockTTL)
	if err != nil {
		logger.Warn("Worker: Ошибка получения блокировки", zap.Error(err))
		result.Skipped = true
		return result
	}
	if !acquired {
		logger.Debug("Worker: Сверку выполняет другая реплика")
		result.Skipped = true
		return result
	}
	defer release()

	sessions, err := w.staleSessions(ctx, now.Add(-w.maxAge))
	if err != nil {
		logger.Warn("Worker: Ошибка получения сессий", zap.Error(err))
		return result
	}
	result.Checked = len(sessions)

	for _, session := range sessions {
		closed, err := w.close(ctx, session, now)
		if err != nil {
			result.Failed++
			logger.Warn("Worker: Не удалось закрыть сессию",
				zap.String("session_id", session.ID.String()),
				zap.Error(err))
			continue
		}
		if closed {
			result.Closed++
		}
	}

	logger.Info("Worker: Сверка сессий завершена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", result.Checked),
		zap.Int("closed", result.Closed),
		zap.Int("failed", result.Failed))
	return result
}

func (w *ReconciliationWorker) staleSessions(ctx context.Context, threshold time.Time) ([]*models.ProjectSession, error) {
	sessions, err := w.sessions.GetActiveSessions(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("получение незакрытых сессий: %w", err)
	}
	return sessions, nil
}

func (w *ReconciliationWorker) close(ctx context.Context, session *models.ProjectSession, now time.Time) (bool, error) {
	closed, err := w.sessions.CloseStaleSession(ctx, session, now)
	if err != nil {
		return false, fmt.Errorf("закрытие сессии: %w", err)
	}
	if closed {
		logger.Debug("Worker: Сессия закрыта",
			zap.String("session_id", session.ID.String()),
			zap.Duration("length", session.Period.Duration(now)))
	}
	return closed, nil
}
