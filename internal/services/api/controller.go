package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LeonardoBeccarini/irrixa/internal/actual"
	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/blockconfig"
	"github.com/LeonardoBeccarini/irrixa/internal/classify"
	"github.com/LeonardoBeccarini/irrixa/internal/gateway"
	"github.com/LeonardoBeccarini/irrixa/internal/model"
	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
	"github.com/LeonardoBeccarini/irrixa/internal/registry"
)

type Controller struct {
	gateway    gateway.PersistenceGateway
	registry   *registry.Registry
	reconciler *actual.Reconciler
	notify     *notifier
	timeout    time.Duration
}

type blockView struct {
	model.Block
	Status classify.BlockStatus `json:"status"`
}

type blocksResponse struct {
	State    string      `json:"state"`
	Date     string      `json:"date"`
	LoadedAt *time.Time  `json:"loaded_at,omitempty"`
	Blocks   []blockView `json:"blocks"`
}

type weatherResponse struct {
	Snapshot model.DailyWeatherSnapshot `json:"snapshot"`
	View     classify.WeatherView       `json:"view"`
}

type saveConfigResponse struct {
	Status    string            `json:"status"`
	Block     string            `json:"block"`
	Config    model.BlockConfig `json:"config"`
	Refreshed bool              `json:"refreshed"`
}

// actualRequest.MM keeps what the operator typed; a JSON number or string.
type actualRequest struct {
	Block string          `json:"block"`
	Date  string          `json:"date"`
	MM    json.RawMessage `json:"mm"`
}

type actualResponse struct {
	Record    model.ActualIrrigationRecord `json:"record"`
	Refreshed bool                         `json:"refreshed"`
}

type actionResponse struct {
	Status    string `json:"status"`
	Refreshed bool   `json:"refreshed"`
}

func (c *Controller) view(b model.Block) blockView {
	return blockView{Block: b, Status: classify.Summarize(b, c.registry.SnapshotDate())}
}

func (c *Controller) ListBlocks(ctx echo.Context) error {
	blocks := c.registry.CurrentBlocks()
	resp := blocksResponse{
		State:  c.registry.State().String(),
		Date:   c.registry.SnapshotDate(),
		Blocks: make([]blockView, 0, len(blocks)),
	}
	if at := c.registry.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = &at
	}
	for _, b := range blocks {
		resp.Blocks = append(resp.Blocks, c.view(b))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetBlock(ctx echo.Context) error {
	name := ctx.Param("name")
	b, ok := c.registry.Block(name)
	if !ok {
		return &apperrors.NotFoundError{What: "block", Key: name}
	}
	return ctx.JSON(http.StatusOK, c.view(b))
}

func (c *Controller) TodaysWeather(ctx echo.Context) error {
	w := c.registry.TodaysWeather()
	if w == nil {
		return &apperrors.NotFoundError{What: "weather for", Key: c.registry.Today()}
	}
	return ctx.JSON(http.StatusOK, weatherResponse{Snapshot: *w, View: classify.SummarizeWeather(*w)})
}

// SaveConfig merges the patch into the block's current configuration, persists it
// and reloads the registry.
func (c *Controller) SaveConfig(ctx echo.Context) error {
	name := ctx.Param("name")
	b, ok := c.registry.Block(name)
	if !ok {
		return &apperrors.NotFoundError{What: "block", Key: name}
	}
	var patch blockconfig.ConfigPatch
	if err := ctx.Bind(&patch); err != nil {
		return err
	}
	// an unknown soil typed by the operator is bad input, not a broken defaults table
	if patch.SoilType != nil && !patch.SoilType.Valid() {
		return &apperrors.ValidationError{Fields: []string{"soil_type"}}
	}

	m := blockconfig.NewMerger(b)
	if err := m.Apply(patch); err != nil {
		return err
	}
	doc, err := m.Finalize()
	if err != nil {
		return err
	}

	rctx := logger.With(ctx.Request().Context(), "block", name)
	if err := c.gateway.SaveConfig(rctx, m.BlockName(), doc); err != nil {
		return err
	}
	logger.Infof(rctx, "configuration saved (soil=%s raw=%v)", doc.Config.SoilType, doc.Config.RAWMMPerM)
	c.notify.configSaved(rctx, doc)

	return ctx.JSON(http.StatusOK, saveConfigResponse{
		Status:    "saved",
		Block:     doc.Block,
		Config:    doc.Config,
		Refreshed: c.refresh(rctx),
	})
}

func (c *Controller) RecordActual(ctx echo.Context) error {
	var req actualRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	rctx := logger.With(ctx.Request().Context(), "block", req.Block)
	rec, err := c.reconciler.Record(rctx, req.Block, req.Date, rawNumber(req.MM))
	if err != nil {
		return err
	}
	logger.Infof(rctx, "actual irrigation %v mm recorded for %s", rec.DepthMM, rec.Date)
	c.notify.actualRecorded(rctx, rec)

	return ctx.JSON(http.StatusCreated, actualResponse{Record: rec, Refreshed: c.refresh(rctx)})
}

// rawNumber turns the mm field back into the text the operator typed.
func rawNumber(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (c *Controller) RunEngine(ctx echo.Context) error {
	return c.action(ctx, "run_engine", c.gateway.RunEngine)
}

func (c *Controller) RefreshWeather(ctx echo.Context) error {
	return c.action(ctx, "refresh_weather", c.gateway.RefreshWeather)
}

func (c *Controller) action(ctx echo.Context, name string, call func(context.Context) error) error {
	rctx := ctx.Request().Context()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, c.timeout)
		defer cancel()
	}
	if err := call(rctx); err != nil {
		return err
	}
	logger.Infof(rctx, "%s done", name)
	return ctx.JSON(http.StatusOK, actionResponse{Status: "success", Refreshed: c.refresh(rctx)})
}

func (c *Controller) RefreshRegistry(ctx echo.Context) error {
	if err := c.registry.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	return c.ListBlocks(ctx)
}

// refresh reloads the registry after a write. A failure keeps the old snapshot
// and is reported to the caller as refreshed=false.
func (c *Controller) refresh(ctx context.Context) bool {
	if err := c.registry.Refresh(ctx); err != nil {
		logger.Warnf(ctx, "registry refresh after write failed: %v", err)
		return false
	}
	return true
}

func (c *Controller) ExportXLSX(ctx echo.Context) error {
	date := c.registry.SnapshotDate()
	if date == "" {
		date = c.registry.Today()
	}
	var buf bytes.Buffer
	if err := writeSummaryXLSX(&buf, c.registry.CurrentBlocks(), date); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="irrixa_summary_%s.xlsx"`, strings.ReplaceAll(date, "/", "-")))
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
