package worker

import (
	"context"
	"fmt"
	"time"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckInRecord - одна отметка из внешней системы пропусков
type CheckInRecord struct {
	UserID uuid.UUID
	Period models.Period
}

// CheckInSource - внешняя система пропусков
type CheckInSource interface {
	Fetch(ctx context.Context, day time.Time) ([]CheckInRecord, error)
}

// NopCheckInSource используется, пока система пропусков не подключена
type NopCheckInSource struct{}

func (NopCheckInSource) Fetch(ctx context.Context, day time.Time) ([]CheckInRecord, error) {
	logger.Debug("Worker: Источник отметок не подключён", zap.Time("day", day))
	return nil, nil
}

type CheckInStore interface {
	CreateCheckIn(context.Context, *models.CheckInSession) error
}

// CheckInWorker забирает отметки за прошедший день, в будни в 00:00
type CheckInWorker struct {
	repo   CheckInStore
	source CheckInSource
	now    func() time.Time
}

func NewCheckInWorker(repo CheckInStore, source CheckInSource, now func() time.Time) *CheckInWorker {
	if source == nil {
		source = NopCheckInSource{}
	}
	if now == nil {
		now = time.Now
	}
	return &CheckInWorker{repo: repo, source: source, now: now}
}

// NextRun - ближайшая полночь понедельника..пятницы строго после now
func NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *CheckInWorker) Start(ctx context.Context) {
	for {
		wait := NextRun(w.now()).Sub(w.now())
		timer := time.NewTimer(wait)
		logger.Info("Worker: Следующий импорт отметок", zap.Duration("in", wait))

		select {
		case <-timer.C:
			w.Import(ctx, w.now().AddDate(0, 0, -1))
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Worker: Импорт отметок останавливается")
			return
		}
	}
}

// Import сохраняет отметки за day, возвращает число сохранённых
func (w *CheckInWorker) Import(ctx context.Context, day time.Time) (int, error) {
	records, err := w.source.Fetch(ctx, day)
	if err != nil {
		logger.Warn("Worker: Ошибка получения отметок", zap.Error(err))
		return 0, fmt.Errorf("получение отметок: %w", err)
	}

	imported := 0
	for _, record := range records {
		if err := record.Period.Validate(); err != nil {
			logger.Warn("Worker: Некорректная отметка",
				zap.String("user_id", record.UserID.String()),
				zap.Error(err))
			continue
		}

		checkIn := &models.CheckInSession{
			ID:     uuid.New(),
			UserID: record.UserID,
			Period: record.Period,
		}
		if err := w.repo.CreateCheckIn(ctx, checkIn); err != nil {
			logger.Warn("Worker: Не удалось сохранить отметку",
				zap.String("user_id", record.UserID.String()),
				zap.Error(err))
			continue
		}
		imported++
	}

	logger.Info("Worker: Импорт отметок завершён",
		zap.Int("received", len(records)),
		zap.Int("imported", imported))
	return imported, nil
}
