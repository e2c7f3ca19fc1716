package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "propertystore/docs"
	"propertystore/internal/authz"
	"propertystore/internal/cache"
	"propertystore/internal/config"
	"propertystore/internal/events"
	"propertystore/internal/handlers"
	"propertystore/internal/middleware"
	"propertystore/internal/migrations"
	"propertystore/internal/pdf"
	"propertystore/internal/realtime"
	"propertystore/internal/repositories"
	"propertystore/internal/routes"
	"propertystore/internal/services"
	"propertystore/internal/storage"
)

// App держит всё, что нужно закрыть при остановке.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *sql.DB
	Router *gin.Engine

	closers []io.Closer
}

// OpenDB открывает пул и проверяет соединение.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping БД: %w", err)
	}
	return db, nil
}

func newCache(ctx context.Context, cfg config.RedisConfig, log logrus.FieldLogger) cache.Cache {
	if cfg.URL == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, cfg.URL, cfg.Namespace)
	if err != nil {
		log.WithError(err).Warn("[app] redis недоступен, кэш в памяти")
		return cache.NewMemory()
	}
	return rc
}

func newPublisher(cfg config.NATSConfig, log logrus.FieldLogger) events.Publisher {
	if cfg.URL == "" {
		return &events.NoopPublisher{}
	}
	p, err := events.NewNATSPublisher(cfg.URL)
	if err != nil {
		log.WithError(err).Warn("[app] NATS недоступен, события не публикуются")
		return &events.NoopPublisher{}
	}
	return p
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.S3.Bucket != "" {
		return storage.NewS3(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.PublicURL)
	}
	return storage.NewLocal(cfg.Files.RootDir, cfg.Server.PublicURL+"/files")
}

func newNotifier(cfg *config.Config, log logrus.FieldLogger) services.Notifier {
	var ns services.MultiNotifier
	if cfg.Email.SMTPHost != "" {
		ns = append(ns, services.NewEmailNotifier(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.NotifyEmail,
			cfg.Server.PublicURL,
		))
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
		if err != nil {
			log.WithError(err).Warn("[app] telegram бот не запущен")
		} else {
			ns = append(ns, tg)
		}
	}
	if len(ns) == 0 {
		return services.NopNotifier{}
	}
	return ns
}

// New собирает приложение: БД, миграции, кэш, события, хранилище, сервисы и роутер.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, DB: db}
	a.closers = append(a.closers, db)

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(db); err != nil {
			a.Close()
			return nil, err
		}
	}

	c := newCache(ctx, cfg.Redis, log)
	a.closers = append(a.closers, c)
	pub := newPublisher(cfg.NATS, log)
	a.closers = append(a.closers, pub)
	st, err := newStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("хранилище файлов: %w", err)
	}
	notifier := newNotifier(cfg, log)
	tokens := authz.NewTokens(cfg.Auth.JWTSecret)
	hub := realtime.NewBoardHub(log)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	accountRepo := repositories.NewClientAccountRepository(db)
	pipelineRepo := repositories.NewPipelineRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	// === Services ===
	userService := services.NewUserService(userRepo, log)
	if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminLogin, cfg.Auth.AdminPasswd); err != nil {
		log.WithError(err).Warn("[app] администратор не создан")
	}
	authService := services.NewAuthService(userRepo, tokens, cfg.Auth.RealtorTTL, log)
	clientService := services.NewClientService(clientRepo)
	pipelineService := services.NewPipelineService(pipelineRepo)
	dealService := services.NewDealService(dealRepo, pipelineRepo, clientRepo, pub, hub, c, log)
	requestService := services.NewRequestService(requestRepo, clientRepo, dealService, notifier, log)
	propertyService := services.NewPropertyService(propertyRepo, st, log)
	analyticsService := services.NewAnalyticsService(analyticsRepo, dealRepo, requestRepo, c, cfg.Redis.TTL)
	portalService := services.NewPortalService(accountRepo, clientRepo, dealService, tokens, cfg.Auth.ClientTTL, notifier, log)
	documentService := services.NewDocumentService(documentRepo, st, dealService,
		pdf.NewSummaryGenerator(cfg.Files.FontPath), cfg.Files.MaxUploadMB<<20, log)

	// === Gin ===
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.MaxMultipartMemory = 8 << 20

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if _, ok := st.(*storage.Local); ok {
		// наружу только фото объектов, документы клиентов отдаются через API
		router.Static("/files/properties", filepath.Join(cfg.Files.RootDir, "properties"))
	}

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, portalService, log),
		Users:     handlers.NewUserHandler(userService, log),
		Clients:   handlers.NewClientHandler(clientService, requestService, log),
		Deals:     handlers.NewDealHandler(dealService, documentService, log),
		Pipelines: handlers.NewPipelineHandler(pipelineService, log),
		Requests:  handlers.NewRequestHandler(requestService, log),
		Props:     handlers.NewPropertyHandler(propertyService, log),
		Analytics: handlers.NewAnalyticsHandler(analyticsService, log),
		Portal:    handlers.NewPortalHandler(portalService, log),
		Documents: handlers.NewDocumentHandler(documentService, log),
		Board:     handlers.NewBoardHandler(hub),
		Health:    handlers.Health(db),
	}, routes.Options{
		Tokens: tokens,
		Cache:  c,
		Log:    log,
	})
	a.Router = router
	return a, nil
}

// Run слушает порт до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Infof("[app] сервер запущен на %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("[app] остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Log.WithError(err).Warn("[app] ошибка при закрытии")
		}
	}
	a.closers = nil
}
