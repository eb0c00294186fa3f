// Package app wires configuration, stores, provider clients, services and
// handlers into one HTTP handler. Both the long-running server and the
// Lambda entrypoint build the same application from here.
package app

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"checkout/internal/domain/identity"
	"checkout/internal/domain/payment"
	"checkout/internal/infrastructure/firebase"
	"checkout/internal/infrastructure/safe2pay"
	"checkout/internal/infrastructure/safeweb"
	httphandlers "checkout/internal/interfaces/http"
	"checkout/internal/shared/config"
	"checkout/internal/shared/messages"
	"checkout/internal/shared/ratelimit"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Redis *redis.Client

	// Handlers
	PixHandler     *httphandlers.PixHandler
	SafewebHandler *httphandlers.SafewebHandler
	WebhookHandler *httphandlers.WebhookHandler
	HealthHandler  *httphandlers.HealthHandler
	ProxyHandler   *httphandlers.ProxyHandler

	// Stores needing a janitor loop when in memory
	StatusStore   payment.StatusStore
	IPLimitStore  ratelimit.Store
	DocLimitStore ratelimit.Store

	// IPLimiter throttles every route by client address.
	IPLimiter *ratelimit.Limiter
}

// NewDependencies initializes all application dependencies. With Redis
// enabled, webhook state and rate limit counters are shared across
// replicas; without it everything lives in process memory.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.Redis.Enabled {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Println("Connected to Redis")

		deps.StatusStore = payment.NewRedisStatusStore(deps.Redis, "payment:status", cfg.Status.TTL)
		deps.IPLimitStore = ratelimit.NewRedisStore(deps.Redis, "ratelimit:ip")
		deps.DocLimitStore = ratelimit.NewRedisStore(deps.Redis, "ratelimit:doc")
	} else {
		deps.StatusStore = payment.NewMemoryStatusStore(cfg.Status.MaxEntries, cfg.Status.TTL)
		deps.IPLimitStore = ratelimit.NewMemoryStore()
		deps.DocLimitStore = ratelimit.NewMemoryStore()
	}

	deps.IPLimiter = ratelimit.New(deps.IPLimitStore, cfg.RateLimit.APIMax, cfg.RateLimit.APIWindow)
	docLimiter := ratelimit.New(deps.DocLimitStore, cfg.RateLimit.DocumentMax, cfg.RateLimit.DocumentWindow)

	// Gateway and identity provider clients
	gatewayClient := safe2pay.NewClient(cfg.Safe2Pay.Token, cfg.Safe2Pay.BaseURL, cfg.Safe2Pay.Timeout)
	safewebClient := safeweb.NewClient(safeweb.Config{
		Username:          cfg.Safeweb.Username,
		Password:          cfg.Safeweb.Password,
		BaseURL:           cfg.Safeweb.BaseURL,
		AuthURL:           cfg.Safeweb.AuthURL,
		CNPJAR:            cfg.Safeweb.CNPJAR,
		PartnerCode:       cfg.Safeweb.PartnerCode,
		ProductECPFA1:     cfg.Safeweb.ProductECPFA1,
		HopeURL:           cfg.Safeweb.HopeURL,
		AttendancePlaceID: cfg.Safeweb.AttendancePlaceID,
	}, cfg.Safeweb.Timeout)

	// Optional approval push on paid charges
	var notifier payment.ApprovalNotifier
	if cfg.Firebase.CredentialsFile != "" {
		texts := messages.Default()
		if cfg.Firebase.MessagesFile != "" {
			loaded, err := messages.Load(cfg.Firebase.MessagesFile)
			if err != nil {
				log.Printf("Warning: Failed to load notification messages: %v", err)
			} else {
				texts = loaded
			}
		}
		fcm, err := firebase.NewNotifier(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.Topic, texts)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase notifier: %v", err)
		} else {
			notifier = fcm
			log.Printf("Firebase notifier enabled (topic %s)", cfg.Firebase.Topic)
		}
	}

	// Domain services
	paymentService := payment.NewService(gatewayClient, deps.StatusStore, payment.Options{
		Sandbox:       cfg.Safe2Pay.Sandbox,
		Application:   cfg.Safe2Pay.Application,
		Vendor:        cfg.Safe2Pay.Vendor,
		CallbackURL:   cfg.Safe2Pay.CallbackURL,
		PIXExpiration: cfg.Safe2Pay.PIXExpiration,
	})
	identityService := identity.NewService(safewebClient)
	processor := payment.NewProcessor(deps.StatusStore, notifier)

	// Handlers
	deps.PixHandler = httphandlers.NewPixHandler(paymentService, cfg.Debug)
	deps.SafewebHandler = httphandlers.NewSafewebHandler(identityService, docLimiter, cfg.Debug)
	deps.WebhookHandler = httphandlers.NewWebhookHandler(processor)
	deps.HealthHandler = httphandlers.NewHealthHandler(cfg)
	deps.ProxyHandler = httphandlers.NewProxyHandler()

	return deps, nil
}

// StartJanitors launches cleanup loops for the in-memory stores. Redis
// expires keys on its own.
func (d *Dependencies) StartJanitors(ctx context.Context, cfg *config.Config) {
	if store, ok := d.StatusStore.(*payment.MemoryStatusStore); ok {
		store.StartJanitor(ctx, cfg.Status.TTL/4)
	}
	if store, ok := d.IPLimitStore.(*ratelimit.MemoryStore); ok {
		store.StartJanitor(ctx, 2*cfg.RateLimit.APIWindow, cfg.RateLimit.APIWindow)
	}
	if store, ok := d.DocLimitStore.(*ratelimit.MemoryStore); ok {
		store.StartJanitor(ctx, 2*cfg.RateLimit.DocumentWindow, cfg.RateLimit.DocumentWindow)
	}
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Redis != nil {
		d.Redis.Close()
	}
}
