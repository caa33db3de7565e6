package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"manual-assistant/internal/adapter/httpapi"
	"manual-assistant/internal/di"
	"manual-assistant/internal/infra"
	"manual-assistant/internal/infra/config"
	"manual-assistant/internal/infra/logger"
)

func main() {
	cfg := config.Load()

	otelEnabled := cfg.OTLPEndpoint != ""
	if otelEnabled {
		shutdown, err := infra.SetupOTelLogging(context.Background(), cfg.OTLPEndpoint, "manual-assistant")
		if err != nil {
			slog.Error("failed to set up otel logging", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	log := logger.NewWithOTel(otelEnabled)
	slog.SetDefault(log)

	dbPool, err := infra.NewPostgresDB(context.Background(), cfg.DSN()+"?sslmode=disable")
	if err != nil {
		log.Error("failed to connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	components, err := di.NewApplicationComponents(cfg, dbPool, log)
	if err != nil {
		log.Error("failed to wire components", slog.String("error", err.Error()))
		os.Exit(1)
	}

	components.Worker.Start()
	defer components.Worker.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := httpapi.NewHandler(
		components.AskUsecase,
		components.Registry,
		components.JobRepo,
		components.PassageRepo,
	)
	handler.Register(e)

	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("server_starting", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
