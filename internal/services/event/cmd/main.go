package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
	"github.com/LeonardoBeccarini/irrixa/internal/services/event"
	"github.com/LeonardoBeccarini/irrixa/pkg/dedup"
	"github.com/LeonardoBeccarini/irrixa/pkg/rabbitmq"
)

func main() {
	cfg := loadConfig()
	if err := logger.Init(cfg.LogLevel, cfg.LogEncoding, "irrixa-events"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writer := event.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket))

	var influxUp atomic.Bool
	go pingInflux(ctx, influx, &influxUp)

	// === MQTT ===
	mqttClient, err := rabbitmq.NewRabbitMQConn(ctx, &cfg.Rabbit)
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("mqtt connection: %w", err))
	}
	defer rabbitmq.CloseRabbitMQConn(mqttClient)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", event.NewHealthHandler(mqttClient, influxUp.Load, writer))
	mux.Handle("/readyz", event.NewReadyHandler(mqttClient, influxUp.Load, writer, 2*time.Second))
	mux.Handle("/events/actual/latest", event.NewActualLatestHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof(ctx, "HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, fmt.Errorf("http server: %w", err))
		}
	}()

	// === Consumer ===
	h := event.NewMQTTHandler(writer.Write, dedup.New(cfg.DedupTTL, cfg.DedupMax))
	consumer := rabbitmq.NewMultiConsumer(mqttClient, cfg.Topics, h.Handle)
	if err := consumer.ConsumeMessage(ctx); err != nil {
		logger.Fatal(ctx, fmt.Errorf("subscribe: %w", err))
	}

	logger.Infof(context.Background(), "shutting down")
	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ReadinessGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
	writer.Flush()
}

func pingInflux(ctx context.Context, influx influxdb2.Client, up *atomic.Bool) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ok, err := influx.Ping(pctx)
		cancel()
		if err != nil && up.Load() {
			logger.Warnf(ctx, "influx ping: %v", err)
		}
		up.Store(ok && err == nil)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
