package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/events"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/logger"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/rabbitmq"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/repository/memory"
	"github.com/iyhunko/product-catalog/internal/repository/mongo"
	"github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	productRepository, closeStore, err := openStore(ctx, conf)
	handleErr("starting storage", err)
	defer closeStore()

	publisher, closePublisher, err := openPublisher(ctx, conf)
	handleErr("starting event publisher", err)
	defer closePublisher()

	productService := service.NewProductService(productRepository, publisher)

	// Start HTTP server
	ctr := controller.New(productService)
	productCtr := controller.NewProductController(productService)
	router := httpAPI.InitRouter(gin.New(), ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port), slog.String("storage", conf.Storage.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("err", err))
	}
}

// openStore connects the configured product store. The returned func releases it.
func openStore(ctx context.Context, conf *config.Config) (repository.ProductRepository, func(), error) {
	switch conf.Storage.Driver {
	case config.StorageMongo:
		client, coll, err := mongo.StartDB(ctx, conf.Storage, conf.Database.Name)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				slog.Error("failed to disconnect from MongoDB", slog.Any("err", err))
			}
		}
		return mongo.NewProductRepository(coll), closeFn, nil
	case config.StoragePostgres:
		db, err := sql.StartDB(ctx, conf.Database)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}
		return sql.NewProductRepository(db), closeFn, nil
	case config.StorageMemory:
		slog.Warn("Using in-memory storage, products are lost on restart")
		return memory.NewProductRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, conf.Storage.Driver)
	}
}

// openPublisher returns nil when product events are disabled.
func openPublisher(ctx context.Context, conf *config.Config) (events.Publisher, func(), error) {
	switch conf.Events.Driver {
	case "":
		slog.Info("Product events disabled")
		return nil, func() {}, nil
	case config.EventsSQS:
		publisher, err := sqspkg.NewPublisherFromConfig(ctx, conf.AWS)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() {}, nil
	case config.EventsRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(conf.RabbitMQ)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := publisher.Close(); err != nil {
				slog.Error("failed to close RabbitMQ publisher", slog.Any("err", err))
			}
		}
		return publisher, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, conf.Events.Driver)
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
