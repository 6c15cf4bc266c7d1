package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/irrixa/internal/actual"
	"github.com/LeonardoBeccarini/irrixa/internal/gateway"
	"github.com/LeonardoBeccarini/irrixa/internal/observability"
	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
	"github.com/LeonardoBeccarini/irrixa/internal/registry"
	"github.com/LeonardoBeccarini/irrixa/internal/services/api"
	"github.com/LeonardoBeccarini/irrixa/pkg/rabbitmq"
)

func main() {
	cfg := loadConfig()
	if err := logger.Init(cfg.LogLevel, cfg.LogEncoding, "irrixa-api"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("timezone %q: %w", cfg.Timezone, err))
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	gw := gateway.New(gateway.Config{
		BackendURL:  cfg.BackendURL,
		DataURL:     cfg.DataURL,
		BlocksPath:  cfg.BlocksPath,
		WeatherPath: cfg.WeatherPath,
		HTTPTimeout: cfg.HTTPTimeout,
		Breaker:     gateway.BreakerSettings{Failures: cfg.CBFails, OpenFor: cfg.CBOpen, Interval: cfg.CBInterval},
		Observer:    metrics,
	})

	// === gRPC health ===
	hs := health.NewServer()
	reg := registry.New(gw, loc, api.Observers{metrics, api.NewHealthReporter(hs)})

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("grpc listen: %w", err))
	}
	go func() {
		logger.Infof(ctx, "gRPC health listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			logger.Errorf(ctx, "grpc server: %v", err)
		}
	}()

	// === MQTT (opzionale) ===
	var pub rabbitmq.IPublisher
	if cfg.PublishEvents {
		client, err := rabbitmq.NewRabbitMQConn(ctx, &cfg.Rabbit)
		if err != nil {
			logger.Warnf(ctx, "events disabled: %v", err)
		} else {
			defer rabbitmq.CloseRabbitMQConn(client)
			pub = rabbitmq.NewPublisher(client, cfg.PublishTimeout)
		}
	}

	svc := api.NewAPIService(api.Options{
		Gateway:    gw,
		Registry:   reg,
		Reconciler: actual.NewReconciler(gw, loc),
		Publisher:  pub,
		Metrics:    metrics,
		Origins:    cfg.Origins,
		Timeout:    cfg.ActionTimeout,
	})

	if err := reg.Refresh(ctx); err != nil {
		logger.Warnf(ctx, "initial load failed, registry stale: %v", err)
	}
	go refreshLoop(ctx, reg, cfg.RefreshInterval)

	go func() {
		if err := svc.Serve(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, fmt.Errorf("http server: %w", err))
		}
	}()

	<-ctx.Done()
	logger.Infof(context.Background(), "shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = svc.Shutdown(shCtx)
	hs.Shutdown()
	gs.GracefulStop()
}

// refreshLoop keeps the snapshot current between operator actions.
func refreshLoop(ctx context.Context, reg *registry.Registry, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := reg.Refresh(ctx); err != nil {
				logger.Warnf(ctx, "periodic refresh: %v", err)
			}
		}
	}
}
