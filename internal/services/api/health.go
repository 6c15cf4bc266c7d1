package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/irrixa/internal/registry"
)

// RegistryService is the gRPC health service name reporting the block registry.
const RegistryService = "irrixa.registry"

// HealthReporter mirrors registry refreshes into a gRPC health server.
// The registry keeps serving its last snapshot after a failed refresh, so only
// the first success flips the status.
type HealthReporter struct {
	srv *health.Server
}

func NewHealthReporter(srv *health.Server) *HealthReporter {
	srv.SetServingStatus(RegistryService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{srv: srv}
}

func (h *HealthReporter) RefreshDone(err error, _ int) {
	if err == nil {
		h.srv.SetServingStatus(RegistryService, healthpb.HealthCheckResponse_SERVING)
	}
}

// Observers fans a refresh outcome out to several observers.
type Observers []registry.Observer

func (o Observers) RefreshDone(err error, blocks int) {
	for _, obs := range o {
		if obs != nil {
			obs.RefreshDone(err, blocks)
		}
	}
}

func healthz(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

func (svc *APIService) readyz(ctx echo.Context) error {
	st := svc.registry.State()
	code := http.StatusOK
	if st != registry.Loaded {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, map[string]any{"ready": st == registry.Loaded, "registry": st.String()})
}
