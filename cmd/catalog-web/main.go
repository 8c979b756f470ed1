package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/client"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
	"github.com/iyhunko/product-catalog/internal/logger"
	"github.com/iyhunko/product-catalog/internal/web"
)

func main() {
	conf, err := config.LoadWebFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	api := client.New(conf.APIBaseURL, nil)
	handler := web.NewHandler(web.NewCatalog(api))

	server := gin.New()
	server.Use(middleware.Recovery(), middleware.Logger())
	router := web.InitRouter(server, handler)

	httpServer := &http.Server{
		Addr:              ":" + conf.WebServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Web server starting", slog.String("port", conf.WebServer.Port), slog.String("api", conf.APIBaseURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("web server shutdown failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
