package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tentacles/internal/adapters/config"
	"tentacles/internal/adapters/errors/noop"
	"tentacles/internal/adapters/errors/sentry"
	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/bybit"
	"tentacles/internal/adapters/exchanges/bybitapi"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/internal/adapters/exchanges/retry"
	"tentacles/internal/adapters/kafka"
	"tentacles/internal/api"
	"tentacles/internal/api/community"
	"tentacles/internal/api/health"
	"tentacles/internal/events"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s %s in %s mode", cfg.App.Name, version, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var producer *kafka.Producer
	var publisher *events.OrderPublisher
	var observer bybit.OrderObserver
	market, _ := cfg.Bybit.MarketType() // validated by config.Load
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		publisher = events.NewOrderPublisher(producer, events.OrderPublisherConfig{
			Exchange:       "bybit",
			Market:         market,
			Topic:          cfg.Kafka.OrderTopic,
			QueueSize:      cfg.Kafka.QueueSize,
			PublishTimeout: cfg.Kafka.PublishTimeout,
		}, log)
		observer = publisher
		log.Infof("Publishing order updates to %s", cfg.Kafka.OrderTopic)
	}

	exchange, err := initExchange(ctx, cfg, market, observer, log)
	if err != nil {
		log.Fatalf("Failed to initialize Bybit adapter: %v", err)
	}
	prometheus.MustRegister(metrics.NewAdapterCollector(log, exchange))

	healthHandler := health.New(log, cfg.App.Name, version)
	healthHandler.AddCheck("exchange", exchange)

	communityHandler := community.NewHandler(community.Offline{}, community.Offline{}, nil, community.Config{
		LoginWait:              cfg.Community.LoginWait,
		PreviewWhenUnavailable: cfg.Community.PreviewWhenUnavailable,
	}, log)

	server := api.NewServer(api.ServerConfig{
		Addr:         cfg.HTTP.Addr,
		ServiceName:  cfg.App.Name,
		Version:      version,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, healthHandler, communityHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")

	// Wait for shutdown signal
	waitForShutdown(ctx, cancel, cfg, server, publisher, producer, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initExchange builds the REST connector, loads markets and, on futures,
// registers the contracts of the configured symbols.
func initExchange(ctx context.Context, cfg *config.Config, market exchanges.MarketType, observer bybit.OrderObserver, log *logger.Logger) (*bybit.Exchange, error) {
	clientCfg := bybitapi.Config{
		APIKey:     cfg.Bybit.APIKey,
		SecretKey:  cfg.Bybit.SecretKey,
		Market:     market,
		Testnet:    cfg.Bybit.Testnet,
		BaseURL:    cfg.Bybit.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Bybit.HTTPTimeout},
		Limiter:    ratelimit.NewBybitLimiters(cfg.Bybit.GlobalRateLimit, cfg.Bybit.TradingRateLimit),
		Logger:     log,
	}
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Bybit.MaxRetries
	clientCfg.Retry = retry.New(retryCfg)

	bybit.DefaultConnectorOptions().Apply(&clientCfg)
	if cfg.Bybit.RecvWindow > 0 {
		clientCfg.RecvWindow = cfg.Bybit.RecvWindow
	}

	client := bybitapi.NewClient(clientCfg)

	loadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := client.LoadMarkets(loadCtx); err != nil {
		return nil, errors.Wrap(err, "load markets")
	}

	exchange := bybit.New(client, bybit.Config{
		Market:   market,
		Logger:   log,
		Observer: observer,
	})

	if market.IsFuture() && cfg.Bybit.APIKey != "" {
		positions, err := exchange.GetPositions(loadCtx, cfg.Bybit.Symbols)
		if err != nil {
			return nil, errors.Wrap(err, "load positions")
		}
		log.Infow("Positions loaded",
			"positions", len(positions),
			"contracts", exchange.RegisteredContracts(),
		)
	}

	return exchange, nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	server *api.Server,
	publisher *events.OrderPublisher,
	producer *kafka.Producer,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Failed to stop HTTP server: %v", err)
	}

	cancel()

	// drain queued order updates before the writers go away
	if publisher != nil {
		if err := publisher.Close(shutdownCtx); err != nil {
			log.Warnf("Failed to drain order updates: %v", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warnf("Failed to close Kafka producer: %v", err)
		}
	}

	// Flush error tracker
	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}

	log.Info("Shutdown complete")
}
