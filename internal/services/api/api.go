// Package api is the operator-facing HTTP service of irrixa.
package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/irrixa/internal/actual"
	"github.com/LeonardoBeccarini/irrixa/internal/gateway"
	"github.com/LeonardoBeccarini/irrixa/internal/observability"
	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
	"github.com/LeonardoBeccarini/irrixa/internal/registry"
	"github.com/LeonardoBeccarini/irrixa/pkg/rabbitmq"
)

type Options struct {
	Gateway    gateway.PersistenceGateway
	Registry   *registry.Registry
	Reconciler *actual.Reconciler
	Publisher  rabbitmq.IPublisher    // nil disables announcements
	Metrics    *observability.Metrics // nil disables /metrics
	Gatherer   prometheus.Gatherer    // defaults to prometheus.DefaultGatherer
	Origins    []string               // CORS
	Timeout    time.Duration          // remote actions
}

type APIService struct {
	router   *echo.Echo
	registry *registry.Registry
}

func NewAPIService(opts Options) *APIService {
	svc := &APIService{router: echo.New(), registry: opts.Registry}
	svc.router.HideBanner = true
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.Logger())
	if opts.Metrics != nil {
		svc.router.Use(opts.Metrics.Middleware())
	}
	origins := opts.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	n := &notifier{pub: opts.Publisher, now: time.Now}
	if opts.Metrics != nil {
		n.obs = opts.Metrics
	}
	cntrl := &Controller{
		gateway:    opts.Gateway,
		registry:   opts.Registry,
		reconciler: opts.Reconciler,
		notify:     n,
		timeout:    opts.Timeout,
	}

	svc.router.GET("/healthz", healthz)
	svc.router.GET("/readyz", svc.readyz)
	if opts.Metrics != nil {
		g := opts.Gatherer
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		svc.router.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}

	api := svc.router.Group("/api/v1")

	blocks := api.Group("/blocks")
	blocks.GET("", cntrl.ListBlocks)
	blocks.GET("/export.xlsx", cntrl.ExportXLSX)
	blocks.GET("/:name", cntrl.GetBlock)
	blocks.POST("/:name/config", cntrl.SaveConfig)

	api.GET("/weather/today", cntrl.TodaysWeather)
	api.POST("/weather/refresh", cntrl.RefreshWeather)
	api.POST("/engine/run", cntrl.RunEngine)
	api.POST("/actual-irrigation", cntrl.RecordActual)
	api.POST("/registry/refresh", cntrl.RefreshRegistry)

	return svc
}

// Handler exposes the router, mostly for tests.
func (svc *APIService) Handler() *echo.Echo { return svc.router }

func (svc *APIService) Serve(addr string) error {
	logger.Infof(context.Background(), "HTTP listening on %s", addr)
	return svc.router.Start(addr)
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}
