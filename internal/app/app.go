package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	"timeRegistration/internal/auth"
	"timeRegistration/internal/config"
	"timeRegistration/internal/lock"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/migrations"
	"timeRegistration/internal/repository/inmemory"
	"timeRegistration/internal/repository/postgres"
	"timeRegistration/internal/service"
	"timeRegistration/internal/worker"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config         *config.Config
	server         *http.Server
	storage        service.Storage
	reconciliation *worker.ReconciliationWorker
	checkIn        *worker.CheckInWorker
	shutdowns      []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает хранилище, сервисы, воркеры и http сервер
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	storage, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		storage.Close()
	})

	locker, err := a.initLocker()
	if err != nil {
		return err
	}

	verifier, err := a.initVerifier()
	if err != nil {
		return err
	}

	users := service.NewUserService(storage)
	sessions := service.NewSessionService(storage, storage, users)
	services := Services{
		Users:     users,
		Customers: service.NewCustomerService(storage, users),
		Projects:  service.NewProjectService(storage, storage, users),
		Tasks:     service.NewTaskService(storage, storage, users),
		Sessions:  sessions,
		OptOuts:   service.NewOptOutService(storage, users),
		CheckIns:  service.NewCheckInService(storage, users),
		Comments:  service.NewCommentService(storage, storage, users),
		Health:    storage,
	}

	rc := a.config.Reconciliation
	a.reconciliation = worker.NewReconciliationWorker(sessions,
		worker.WithInterval(rc.Interval),
		worker.WithMaxSessionAge(rc.MaxSessionAge),
		worker.WithLocker(locker, a.config.Redis.LockKey, rc.LockTTL),
	)
	a.checkIn = worker.NewCheckInWorker(storage, worker.NopCheckInSource{}, time.Now)

	router := NewRouter(RouterConfig{
		AllowedOrigins:    a.config.CORS.AllowedOrigins,
		RequestsPerMinute: a.config.RateLimit.RequestsPerMinute,
		Verifier:          verifier,
	}, services)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(router, "time-registration"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initStorage(ctx context.Context) (service.Storage, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		if a.config.Database.MigrateOnStart {
			if err := migrations.Up(a.config.Database.URL); err != nil {
				return nil, fmt.Errorf("миграции: %w", err)
			}
		}
		storage, err := postgres.New(ctx, a.config.Database.URL,
			postgres.WithMaxConns(a.config.Database.MaxConnections),
			postgres.WithMinConns(a.config.Database.MinConnections),
			postgres.WithMaxIdleTime(a.config.Database.IdleTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}
		return storage, nil
	case config.RepositoryInMemory:
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		return inmemory.New(), nil
	}
	return nil, fmt.Errorf("неизвестный тип хранилища: %s", a.config.Repository.Type)
}

// initLocker: без redis блокировка локальная, это корректно только для одного экземпляра
func (a *App) initLocker() (lock.Locker, error) {
	if a.config.Redis.Addr == "" {
		return lock.NopLocker{}, nil
	}
	client, err := lock.NewRedisClient(a.config.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие соединения с redis...")
		client.Close()
	})
	return lock.NewRedisLocker(client), nil
}

func (a *App) initVerifier() (*auth.Verifier, error) {
	var options []auth.Option
	if path := a.config.Auth.PublicKeyPath; path != "" {
		key, err := auth.LoadPublicKey(path)
		if err != nil {
			return nil, err
		}
		options = append(options, auth.WithPublicKey(key))
	}
	if a.config.Auth.AllowUnsigned {
		logger.Warn("Подпись токенов не проверяется, режим только для разработки")
		options = append(options, auth.WithUnsignedTokens())
	}
	return auth.NewVerifier(a.config.Auth.Audiences, options...)
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.config.Reconciliation.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.reconciliation.Start(ctx)
		}()
	}
	if a.config.CheckIn.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.checkIn.Start(ctx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки http сервера", err)
	}

	cancel()
	wg.Wait()
	a.Close()
	return runErr
}

// Sweep - разовый проход сверки без запуска сервера
func (a *App) Sweep(ctx context.Context) worker.SweepResult {
	return a.reconciliation.Sweep(ctx)
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
