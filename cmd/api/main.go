package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/aksi-clean/api/internal/di"
	"github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/events"
	"github.com/aksi-clean/api/internal/handlers"
	"github.com/aksi-clean/api/internal/platform/config"
	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/platform/idempotency"
	"github.com/aksi-clean/api/internal/platform/observability"
	"github.com/aksi-clean/api/internal/platform/secrets"
	"github.com/aksi-clean/api/internal/platform/storage"
	firestoreRepo "github.com/aksi-clean/api/internal/repositories/firestore"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets("Auth.JWTSecret"),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("repositories close error", zap.Error(err))
		}
	}()

	containerOpts := []di.Option{di.WithLogger(logger)}

	dispatcher := events.NewDispatcher(logger.Named("events"))
	auditLogger := logger.Named("pricing-audit")
	dispatcher.Subscribe("audit-log", events.SubscriberFunc(func(_ context.Context, event domain.PriceCalculatedEvent) error {
		auditLogger.Info("price calculated",
			zap.String("event_id", event.ID),
			zap.String("category", event.CategoryCode),
			zap.String("item", event.ItemName),
			zap.Int64("total", event.FinalTotal))
		return nil
	}))

	var pubsubClient *pubsub.Client
	if projectID := strings.TrimSpace(cfg.PubSub.ProjectID); projectID != "" {
		pubsubClient, err = pubsub.NewClient(ctx, projectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		publisher, err := events.NewPubSubPublisher(pubsubClient.Topic(cfg.PubSub.PricingTopic))
		if err != nil {
			logger.Fatal("failed to initialise pricing event publisher", zap.Error(err))
		}
		dispatcher.Subscribe("pubsub", events.SubscriberFunc(publisher.Publish))
	} else {
		logger.Warn("pubsub project not configured; pricing events stay in-process")
	}
	containerOpts = append(containerOpts, di.WithPriceEventSink(dispatcher))

	if keyFile := strings.TrimSpace(cfg.Storage.SignerKeyFile); keyFile != "" {
		signer, err := storage.NewServiceAccountSignerFromFile(keyFile)
		if err != nil {
			logger.Fatal("failed to load storage signer key", zap.Error(err))
		}
		signClient, err := storage.NewClient(signer)
		if err != nil {
			logger.Fatal("failed to initialise storage signing client", zap.Error(err))
		}
		containerOpts = append(containerOpts, di.WithPhotoSigner(signClient))
	} else {
		logger.Warn("storage signer not configured; photo urls disabled")
	}

	container, err := di.NewContainer(ctx, cfg, registry, containerOpts...)
	if err != nil {
		logger.Fatal("failed to assemble container", zap.Error(err))
	}

	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	var backgroundWG sync.WaitGroup

	backgroundWG.Add(1)
	go func() {
		defer backgroundWG.Done()
		container.Janitor.Run(backgroundCtx)
	}()

	var cleanupTicker *time.Ticker
	if cfg.Idempotency.CleanupInterval > 0 {
		cleanupTicker = time.NewTicker(cfg.Idempotency.CleanupInterval)
		backgroundWG.Add(1)
		go func() {
			defer backgroundWG.Done()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-cleanupTicker.C:
					runCtx, cancel := context.WithTimeout(backgroundCtx, time.Minute)
					removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
					cancel()
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-backgroundCtx.Done():
					return
				}
			}
		}()
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firestore.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
	}

	authn := container.Auth
	svc := container.Services

	authHandlers := handlers.NewAuthHandlers(svc.Auth)
	wizardHandlers := handlers.NewWizardHandlers(authn, svc.Wizard, svc.Clients, svc.Branches, svc.Counters, svc.Photos)
	catalogHandlers := handlers.NewCatalogHandlers(authn, svc.Catalog, svc.Pricing, cfg.Pricing.ExpediteBps)
	clientHandlers := handlers.NewClientHandlers(authn, svc.Clients)
	branchHandlers := handlers.NewBranchHandlers(authn, svc.Branches)
	orderHandlers := handlers.NewOrderHandlers(authn, svc.Orders)
	systemHandlers := handlers.NewSystemHandlers(authn, svc.System)

	opts := []handlers.Option{
		handlers.WithMiddlewares(middlewares...),
		handlers.WithRateLimit(cfg.RateLimits.DefaultPerMinute, time.Minute),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(svc.System)),
		handlers.WithAuthRoutes(authHandlers.Routes),
		handlers.WithWizardRoutes(wizardHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithClientRoutes(clientHandlers.Routes),
		handlers.WithBranchRoutes(branchHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithOrderMiddlewares(idempotencyMiddleware),
		handlers.WithInternalRoutes(systemHandlers.Routes),
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("aksi-clean api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if cleanupTicker != nil {
		cleanupTicker.Stop()
	}
	backgroundCancel()
	backgroundWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		if value, ok := env[key]; ok {
			return strings.TrimSpace(value)
		}
		return ""
	}

	envLabel := strings.ToLower(lookup("AKSI_ENVIRONMENT"))
	if envLabel == "" {
		envLabel = "local"
	}
	defaultProject := lookup("AKSI_SECRET_DEFAULT_PROJECT_ID")
	if defaultProject == "" {
		defaultProject = lookup("AKSI_FIRESTORE_PROJECT_ID")
	}
	fallbackPath := lookup("AKSI_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithEnvironment(envLabel),
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
	}
	if defaultProject != "" {
		opts = append(opts, secrets.WithDefaultProject(defaultProject))
	}

	return secrets.NewFetcher(ctx, opts...)
}
