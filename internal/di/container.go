package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/config"
	"github.com/aksi-clean/api/internal/platform/storage"
	"github.com/aksi-clean/api/internal/repositories"
	"github.com/aksi-clean/api/internal/services"
	"github.com/aksi-clean/api/internal/wizard"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Auth     services.AuthService
	Catalog  services.CatalogService
	Clients  services.ClientService
	Branches services.BranchService
	Counters services.CounterService
	Orders   services.OrderService
	Photos   services.PhotoService
	System   services.SystemService
	Pricing  *services.PricingEngine
	Wizard   *wizard.Service
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services

	Sessions wizard.SessionStore
	Janitor  *wizard.Janitor
	Tokens   *auth.JWTManager
	Auth     *auth.Authenticator
}

// Option customises container construction.
type Option func(*containerOptions)

type containerOptions struct {
	logger      *zap.Logger
	priceSink   services.PriceEventSink
	photoSigner *storage.Client
	clock       func() time.Time
}

// WithLogger injects the process logger used by services and background loops.
func WithLogger(logger *zap.Logger) Option {
	return func(o *containerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPriceEventSink routes pricing events to the given sink. Without one the
// engine calculates silently.
func WithPriceEventSink(sink services.PriceEventSink) Option {
	return func(o *containerOptions) {
		o.priceSink = sink
	}
}

// WithPhotoSigner enables signed photo URLs backed by the given signing
// client. Without one the photo endpoints report unavailable.
func WithPhotoSigner(signer *storage.Client) Option {
	return func(o *containerOptions) {
		o.photoSigner = signer
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *containerOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides the
// Firestore-backed registry, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	options := containerOptions{
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, options.clock)
	if err != nil {
		return nil, fmt.Errorf("build token manager: %w", err)
	}
	authn := auth.NewAuthenticator(tokens)

	svc, sessions, err := buildServices(cfg, reg, tokens, options)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
		Sessions:     sessions,
		Janitor:      wizard.NewJanitor(sessions, cfg.Wizard.SweepInterval, options.logger),
		Tokens:       tokens,
		Auth:         authn,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(cfg config.Config, reg repositories.Registry, tokens *auth.JWTManager, options containerOptions) (Services, wizard.SessionStore, error) {
	var svc Services

	authSvc, err := services.NewAuthService(services.AuthServiceDeps{
		Repository: reg.Operators(),
		Tokens:     tokens,
		TokenTTL:   cfg.Auth.TokenTTL,
		Clock:      options.clock,
		Logger:     options.logger,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build auth service: %w", err)
	}
	svc.Auth = authSvc

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository: reg.Catalog(),
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	clientSvc, err := services.NewClientService(services.ClientServiceDeps{
		Repository: reg.Clients(),
		Clock:      options.clock,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build client service: %w", err)
	}
	svc.Clients = clientSvc

	branchSvc, err := services.NewBranchService(services.BranchServiceDeps{
		Repository: reg.Branches(),
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build branch service: %w", err)
	}
	svc.Branches = branchSvc

	counterSvc, err := services.NewCounterService(services.CounterServiceDeps{
		Repository: reg.Counters(),
		Clock:      options.clock,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build counter service: %w", err)
	}
	svc.Counters = counterSvc

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{
		ExpediteExcludedCategories: cfg.Pricing.ExpediteExcludedCategories,
		DiscountExcludedCategories: cfg.Pricing.DiscountExcludedCategories,
		Sink:                       options.priceSink,
		Clock:                      options.clock,
		Logger:                     options.logger,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build pricing engine: %w", err)
	}
	svc.Pricing = pricing

	sessions := wizard.NewMemorySessionStore(cfg.Wizard.SessionTTL, options.clock)
	wizardSvc, err := wizard.NewService(wizard.ServiceDeps{
		Store:       sessions,
		Calculator:  pricing,
		Catalog:     catalogSvc,
		ExpediteBps: cfg.Pricing.ExpediteBps,
		Logger:      options.logger,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build wizard service: %w", err)
	}
	svc.Wizard = wizardSvc

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      reg.Orders(),
		Sessions:    sessions,
		Discounts:   pricing,
		ExpediteBps: cfg.Pricing.ExpediteBps,
		Clock:       options.clock,
		Logger:      options.logger,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orderSvc

	if options.photoSigner != nil {
		photoSvc, err := services.NewPhotoService(services.PhotoServiceDeps{
			Signer: options.photoSigner,
			Bucket: cfg.Storage.PhotosBucket,
			Logger: options.logger,
		})
		if err != nil {
			return Services{}, nil, fmt.Errorf("build photo service: %w", err)
		}
		svc.Photos = photoSvc
	}

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: reg.Health(),
		Clock:            options.clock,
		Build: services.BuildInfo{
			Environment: cfg.Environment,
			StartedAt:   options.clock().UTC(),
		},
		Counters: counterSvc,
	})
	if err != nil {
		return Services{}, nil, fmt.Errorf("build system service: %w", err)
	}
	svc.System = systemSvc

	return svc, sessions, nil
}
