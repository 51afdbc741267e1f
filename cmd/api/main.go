package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"tokoaing/internal/adapter/api"
	"tokoaing/internal/adapter/api/handler"
	apimiddleware "tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/adapter/api/router"
	"tokoaing/internal/adapter/repository"
	domainrepo "tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/internal/infrastructure/firebase"
	"tokoaing/internal/infrastructure/memtree"
	"tokoaing/internal/infrastructure/ratelimit"
	"tokoaing/internal/infrastructure/rtdb"
	"tokoaing/internal/infrastructure/storage"
	"tokoaing/internal/infrastructure/websocket"
	"tokoaing/internal/session"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/config"
	"tokoaing/pkg/logger"
)

// backend is the storage and identity wiring selected by DATA_BACKEND.
type backend struct {
	tree     domainrepo.Tree
	identity service.IdentityService
	logs     domainrepo.OrderLogRepository
	uploader service.FileUploadService
	closers  []func() error
}

func credentials(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
		logger.Error("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		os.Exit(1)
	}
	logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
	return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
}

func firebaseBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	opt := credentials(cfg)

	app, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		DatabaseURL:   cfg.FirebaseDatabaseURL,
		StorageBucket: cfg.StorageBucket,
	}, opt)
	if err != nil {
		return nil, err
	}

	dbClient, err := app.Database(ctx)
	if err != nil {
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := firebase.NewFirebaseAuthClient(ctx, authClient, cfg.FirebaseAPIKey)
	if err != nil {
		return nil, err
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	b := &backend{
		tree:     rtdb.NewTree(dbClient, cfg.WatchPollInterval),
		identity: identity,
		logs:     repository.NewFirestoreOrderLogRepository(firestoreClient),
		closers:  []func() error{firestoreClient.Close},
	}

	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			logger.Warn("Cloud Storage disabled: %v", err)
		} else {
			b.uploader = storageClient
			b.closers = append(b.closers, storageClient.Close)
		}
	}

	return b, nil
}

func memoryBackend() *backend {
	logger.Warn("Running with the in-memory backend; data is lost on restart")
	return &backend{
		tree:     memtree.New(),
		identity: firebase.NewLocalIdentityService(),
		logs:     repository.NewMemoryOrderLogRepository(),
	}
}

func preferences(ctx context.Context, cfg *config.Config) (domainrepo.PreferenceRepository, func() error) {
	if cfg.RedisURL == "" {
		return repository.NewMemoryPreferenceRepository(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Invalid REDIS_URL: %v", err)
		os.Exit(1)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, preferences kept in memory: %v", err)
		client.Close()
		return repository.NewMemoryPreferenceRepository(), nil
	}

	logger.Info("Session preferences stored in Redis")
	return repository.NewRedisPreferenceRepository(client), client.Close
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var b *backend
	if cfg.DataBackend == config.BackendMemory {
		b = memoryBackend()
	} else {
		b, err = firebaseBackend(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Firebase: %v", err)
			os.Exit(1)
		}
	}
	defer func() {
		for _, closeFn := range b.closers {
			closeFn()
		}
	}()

	prefs, closePrefs := preferences(ctx, cfg)
	if closePrefs != nil {
		defer closePrefs()
	}

	accountRepo := repository.NewTreeAccountRepository(b.tree)
	productRepo := repository.NewTreeProductRepository(b.tree)
	ticketRepo := repository.NewTreeTicketRepository(b.tree)
	orderRepo := repository.NewTreeOrderRepository(b.tree)
	inboxRepo := repository.NewTreeInboxRepository(b.tree)
	boxRepo := repository.NewTreeMysteryBoxRepository(b.tree)
	leaderboardRepo := repository.NewTreeLeaderboardRepository(b.tree)

	payments := service.NewPaymentLinkService(cfg.PaymentURLProduct, cfg.PaymentURLTicket, cfg.PaymentURLMysteryBox)

	useCases := handler.UseCases{
		Auth:        usecase.NewAuthUseCase(accountRepo, b.identity),
		User:        usecase.NewUserUseCase(accountRepo, b.identity),
		Product:     usecase.NewProductUseCase(productRepo, b.uploader),
		Ticket:      usecase.NewTicketUseCase(b.tree, ticketRepo),
		Order:       usecase.NewOrderUseCase(orderRepo, productRepo, ticketRepo, payments, cfg.MysteryBoxPrice),
		Fulfillment: usecase.NewFulfillmentUseCase(b.tree, accountRepo, productRepo, b.logs),
		MysteryBox:  usecase.NewMysteryBoxUseCase(b.tree, boxRepo, accountRepo, orderRepo),
		Leaderboard: usecase.NewLeaderboardUseCase(leaderboardRepo),
		Inbox:       usecase.NewInboxUseCase(b.tree, inboxRepo),
		History:     usecase.NewHistoryUseCase(orderRepo),
		Feed:        usecase.NewFeedUseCase(b.tree),
	}

	sessions := session.NewManager(session.Dependencies{
		Preferences: prefs,
		Accounts:    accountRepo,
		Identity:    b.identity,
		BypassTTL:   cfg.BypassFlagTTL,
	}, cfg.SessionIdleTTL)
	sessions.StartJanitor(ctx, time.Minute)
	defer sessions.CloseAll()

	limiter := ratelimit.NewRateLimiter(cfg.LoginRatePerMinute)
	limiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	handler.Setup(useCases, sessions, wsManager, cfg.ContactURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, apimiddleware.SessionHeader, apimiddleware.ThemeHeader},
		ExposeHeaders: []string{apimiddleware.SessionHeader},
	}))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool { return c.Path() == "/v1/ws" },
		Timeout: cfg.RequestTimeout,
	}))
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(sessions, cfg.RequestTimeout, !cfg.IsDevelopment())
	router.Setup(e, router.Middlewares{
		Auth:      authMiddleware,
		Admin:     apimiddleware.NewAdminMiddleware(authMiddleware),
		RateLimit: apimiddleware.NewRateLimitMiddleware(limiter),
	})

	go func() {
		logger.Info("Starting server on port %s (%s backend)", cfg.ServerPort, cfg.DataBackend)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
