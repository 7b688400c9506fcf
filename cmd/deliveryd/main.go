package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cvneat/delivery-quote-service/internal/adapter/geocache"
	"github.com/cvneat/delivery-quote-service/internal/adapter/httpapi"
	kafkaadapter "github.com/cvneat/delivery-quote-service/internal/adapter/kafka"
	"github.com/cvneat/delivery-quote-service/internal/adapter/nominatim"
	"github.com/cvneat/delivery-quote-service/internal/adapter/osrm"
	"github.com/cvneat/delivery-quote-service/internal/adapter/restaurants"
	"github.com/cvneat/delivery-quote-service/internal/config"
	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
	"github.com/cvneat/delivery-quote-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	geocoder := nominatim.NewClient(cfg.NominatimBaseURL, cfg.GeocodeTimeout, metrics, logger)
	router := osrm.NewClient(cfg.OSRMBaseURL, cfg.RouteTimeout, metrics, logger)
	if cfg.OSRMBaseURL == "" {
		logger.Info("road routing disabled, billing straight-line distance")
	}

	// Persistent tiers are optional: without a database the cache is
	// memory-only and every restaurant id falls back to the default
	// origin.
	var (
		store     geocache.Store             = geocache.NullStore{}
		directory domain.RestaurantDirectory = restaurants.NullDirectory{}
	)
	if cfg.DatabaseDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			logger.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store, err = geocache.NewPostgresStore(db)
		if err != nil {
			logger.Error("failed to migrate geocode cache", "error", err)
			os.Exit(1)
		}
		directory, err = restaurants.NewPostgresDirectory(db)
		if err != nil {
			logger.Error("failed to migrate restaurants", "error", err)
			os.Exit(1)
		}
		logger.Info("postgres enabled")
	}

	cache := geocache.New(cfg.CacheMaxEntries, store, clock, metrics, logger)

	var publisher domain.QuotePublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaQuoteTopic, clock, metrics, logger)
		publisher = kafkaPublisher
		logger.Info("quote events enabled", "topic", cfg.KafkaQuoteTopic)
	}

	quotes := service.New(geocoder, router, cache, directory, publisher, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, quotes, quotes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
