package app

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/catalogapi"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/rediscache"
	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type outbound struct {
	catalog    port.CatalogClient
	redis      *rediscache.RedisKV
	cartEvents port.CartEventsProducer
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	outbound   outbound
	service    service.Service
	carts      *cart.Registry
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initCatalog()
	app.initCartEvents()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"

	client, err := catalogapi.New(
		catalogapi.BaseURLOpt(app.cfg.Catalog.BaseURL),
		catalogapi.TimeoutOpt(app.cfg.Catalog.Timeout),
		catalogapi.MaxAttemptsOpt(app.cfg.Catalog.MaxAttempts),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.catalog = client

	if !app.cfg.CacheEnabled() {
		return
	}

	c := app.cfg.Cache
	kv, err := rediscache.NewRedisKV(app.ctx, c.RedisAddr, c.Password, c.DB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.redis = &kv
	app.outbound.catalog = rediscache.NewCatalog(client, kv, c.TTL)
	slog.Info("catalog cache is enabled", "op", op, "addr", c.RedisAddr)
}

func (app *App) initCartEvents() {
	const op = "App.initCartEvents"

	if !app.cfg.EventsEnabled() {
		slog.Info("cart events are disabled", "op", op)
		return
	}

	b := app.cfg.Broker
	srClient, err := sr.NewClient(sr.URLs(b.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeCartEventV1(
		app.ctx,
		schema.SubjectOpt(b.Topics.CartEvents+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaIdentifier(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var tlsCfg *tls.Config
	if app.cfg.TLSEnabled() {
		tlsCfg, err = adapter.MakeTLSConfig(b.TLS.CA, b.TLS.Cert, b.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	producer, err := kafka.NewCartEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx, b.SeedBrokers, b.Topics.CartEvents, tlsCfg,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.cartEvents = producer
}

func (app *App) initCoreService() {
	app.service = service.New(app.outbound.catalog, app.outbound.cartEvents)
	app.carts = cart.NewRegistry(cart.IdleTTLOpt(app.cfg.Session.MaxAge))
}

func (app *App) initInboundAdapters() {
	const op = "App.initInboundAdapters"

	secret := []byte(app.cfg.Session.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			app.fallDown(op, err)
		}
		slog.Warn("session.secret is empty, sessions end on restart", "op", op)
	}

	sessionStore := httphandler.NewSessionStore(secret, app.cfg.Session.MaxAge)
	session := httphandler.Session(
		sessionStore, app.cfg.Session.CookieName, app.carts,
	)
	limiter := httphandler.NewRateLimiter(
		app.cfg.RateLimit.RPS, app.cfg.RateLimit.Burst,
	)

	handler := httphandler.NewRouter(
		app.service, app.service, session, limiter,
	)
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HTTPRequestTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.outbound.cartEvents != nil {
		app.outbound.cartEvents.Close()
	}
	if app.outbound.redis != nil {
		app.outbound.redis.Close()
	}

	slog.Info("application is closed", "carts", app.carts.Len())
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
