package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"funnelworks/internal/analytics"
	"funnelworks/internal/cache"
	"funnelworks/internal/config"
	"funnelworks/internal/cta"
	"funnelworks/internal/flow"
	"funnelworks/internal/repository"
	"funnelworks/internal/service"
	"funnelworks/internal/telemetry"
	"funnelworks/internal/transport/rest"
	"funnelworks/internal/transport/rest/middleware"
	"funnelworks/internal/transport/ws"
)

// App wires every component of the funnel service
type App struct {
	Config *config.Config
	Logger *zap.Logger

	SessionCache cache.SessionCache
	StatsCache   cache.StatsCache
	LeadRepo     repository.LeadRepo // nil without MongoDB
	Tracker      analytics.Tracker
	Funnel       *analytics.Funnel
	WSHub        *ws.Hub

	AuthService     *service.AuthService
	ToolService     *service.ToolService
	CTAService      *service.CTAService
	OperatorService *service.OperatorService

	Handler http.Handler

	rdb      *redis.Client
	mongo    *mongo.Client
	shutdown telemetry.Shutdown
}

// New connects the configured backends and builds the service graph.
// Without a Redis URI sessions live in memory; without a Mongo URI leads are only logged.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	shutdown, err := telemetry.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, err
	}
	a.shutdown = shutdown

	if err := a.connectRedis(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.connectMongo(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	// Initialize WebSocket hub and analytics
	a.WSHub = ws.NewHub(logger)
	a.Tracker = analytics.Multi{
		analytics.New(analytics.PostHogConfig{
			APIKey:        cfg.Analytics.PostHogKey,
			Host:          cfg.Analytics.PostHogHost,
			QueueSize:     cfg.Analytics.QueueSize,
			BatchSize:     cfg.Analytics.BatchSize,
			FlushInterval: cfg.Analytics.FlushInterval,
		}, logger),
		a.WSHub.Tracker(),
	}
	a.Funnel = analytics.NewFunnel(a.Tracker, nil)

	// Initialize services
	var sink service.CompletionSink = service.NewLogSink(logger)
	if a.LeadRepo != nil {
		sink = service.NewRepoSink(a.LeadRepo)
	}

	catalog := flow.NewCatalog(cfg.ROI)
	a.AuthService = service.NewAuthService(cfg.Auth, nil)
	a.ToolService = service.NewToolService(catalog, a.SessionCache, a.StatsCache, sink, a.Funnel, a.AuthService, logger)
	dispatcher := cta.NewDispatcher(cfg.CTA.Phone, cfg.CTA.DefaultMessage, a.Funnel, logger)
	a.CTAService = service.NewCTAService(dispatcher, a.ToolService, cfg.CTA.ContactName)
	a.OperatorService = service.NewOperatorService(a.LeadRepo, a.StatsCache, catalog)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.ToolService.SetBroadcaster(a.WSHub)

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Handler = rest.NewRouter(&rest.Container{
		AuthService:     a.AuthService,
		ToolService:     a.ToolService,
		CTAService:      a.CTAService,
		OperatorService: a.OperatorService,
		Funnel:          a.Funnel,
		WSHub:           a.WSHub,
		RateLimiter:     limiter,
		ROI:             cfg.ROI,
		HTTP:            cfg.HTTP,
		OfferDays:       cfg.Urgency.OfferDays,
		Logger:          logger,
	})
	return a, nil
}

func (a *App) connectRedis(ctx context.Context) error {
	if a.Config.Redis.URI == "" {
		a.Logger.Info("REDIS_URI not set, using in-memory sessions")
		a.SessionCache = cache.NewMemorySessionCache(a.Config.Redis.SessionTTL, nil)
		a.StatsCache = cache.NewMemoryStatsCache()
		return nil
	}

	a.rdb = redis.NewClient(&redis.Options{
		Addr: a.Config.RedisAddr(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := a.rdb.Ping(pingCtx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	a.Logger.Info("connected to Redis", zap.String("addr", a.Config.RedisAddr()))

	a.SessionCache = cache.NewSessionCache(a.rdb, a.Config.Redis.SessionTTL)
	a.StatsCache = cache.NewStatsCache(a.rdb)
	return nil
}

func (a *App) connectMongo(ctx context.Context) error {
	if a.Config.Mongo.URI == "" {
		a.Logger.Info("MONGO_URI not set, leads are logged only")
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.mongo = client

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	a.Logger.Info("connected to MongoDB", zap.String("database", a.Config.Mongo.Database))

	a.LeadRepo = repository.NewLeadRepo(client.Database(a.Config.Mongo.Database))
	if err := a.LeadRepo.EnsureIndexes(pingCtx); err != nil {
		return fmt.Errorf("failed to create lead indexes: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.HTTP.Port,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases every backend. Safe on a partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Tracker != nil {
		errs = append(errs, a.Tracker.Close())
	}
	if a.WSHub != nil {
		a.WSHub.Close()
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Disconnect(ctx))
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}
