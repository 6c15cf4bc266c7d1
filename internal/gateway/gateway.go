// Package gateway talks to the remote Irrixa backend and to the host serving
// the engine's published documents.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// PersistenceGateway is the remote store of block configuration, actual
// irrigation records and the engine outputs. Calls are never retried.
type PersistenceGateway interface {
	SaveConfig(ctx context.Context, blockName string, doc entities.ConfigDocument) error
	SaveActualIrrigation(ctx context.Context, rec entities.ActualIrrigationRecord) error
	LoadBlocks(ctx context.Context) ([]entities.Block, error)
	LoadWeather(ctx context.Context, date string) (*entities.DailyWeatherSnapshot, error)
	RefreshWeather(ctx context.Context) error
	RunEngine(ctx context.Context) error
}

// Observer receives call outcomes and breaker transitions.
type Observer interface {
	ObserveCall(op string, err error, elapsed time.Duration)
	BreakerState(name, state string)
}

type BreakerSettings struct {
	Failures int           // consecutive failures before opening
	OpenFor  time.Duration // time spent open before a half-open probe
	Interval time.Duration // closed-state counter reset; 0 never resets
}

type Config struct {
	BackendURL  string // Flask backend: /api/...
	DataURL     string // static host: /data/..., /Weather/...
	BlocksPath  string
	WeatherPath string // contains one %s for the date
	HTTPTimeout time.Duration
	Breaker     BreakerSettings
	Observer    Observer
}

// Client implements PersistenceGateway over HTTP. Each upstream has its own breaker.
type Client struct {
	cfg     Config
	backend *upstream
	data    *upstream
}

var _ PersistenceGateway = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.BlocksPath == "" {
		cfg.BlocksPath = "/data/block_irrigation.json"
	}
	if cfg.WeatherPath == "" {
		cfg.WeatherPath = "/Weather/%s/weather_data.json"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		backend: newUpstream("backend", cfg.BackendURL, cfg.HTTPTimeout, cfg.Breaker, cfg.Observer),
		data:    newUpstream("data", cfg.DataURL, cfg.HTTPTimeout, cfg.Breaker, cfg.Observer),
	}
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveCall(op, err, time.Since(start))
	}
}

func (c *Client) SaveConfig(ctx context.Context, blockName string, doc entities.ConfigDocument) (err error) {
	defer func(start time.Time) { c.observe("save_config", start, err) }(time.Now())
	if err = c.backend.postJSON(ctx, "/api/save_config/"+url.PathEscape(blockName), doc.Config, nil); err != nil {
		err = &apperrors.PersistError{Op: "save_config", Block: blockName, Err: err}
	}
	return err
}

func (c *Client) SaveActualIrrigation(ctx context.Context, rec entities.ActualIrrigationRecord) (err error) {
	defer func(start time.Time) { c.observe("save_actual_irrigation", start, err) }(time.Now())
	if err = c.backend.postJSON(ctx, "/api/save_actual_irrigation", rec, nil); err != nil {
		err = &apperrors.PersistError{Op: "save_actual_irrigation", Block: rec.BlockName, Err: err}
	}
	return err
}

func (c *Client) LoadBlocks(ctx context.Context) (_ []entities.Block, err error) {
	defer func(start time.Time) { c.observe("load_blocks", start, err) }(time.Now())
	var docs []blockDoc
	if err = c.data.getJSON(ctx, c.cfg.BlocksPath, &docs); err != nil {
		return nil, &apperrors.LoadError{Op: "load_blocks", Err: err}
	}
	out := make([]entities.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Block)
	}
	return out, nil
}

// LoadWeather returns the feed record for date, or nil when the feed has none.
func (c *Client) LoadWeather(ctx context.Context, date string) (_ *entities.DailyWeatherSnapshot, err error) {
	defer func(start time.Time) { c.observe("load_weather", start, err) }(time.Now())
	var docs []weatherDoc
	err = c.data.getJSON(ctx, fmt.Sprintf(c.cfg.WeatherPath, url.PathEscape(date)), &docs)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.LoadError{Op: "load_weather", Err: err}
	}
	for _, d := range docs {
		if d.Date == date {
			w := d.DailyWeatherSnapshot
			return &w, nil
		}
	}
	return nil, nil
}

func (c *Client) RefreshWeather(ctx context.Context) (err error) {
	defer func(start time.Time) { c.observe("refresh_weather", start, err) }(time.Now())
	return c.action(ctx, "refresh_weather")
}

func (c *Client) RunEngine(ctx context.Context) (err error) {
	defer func(start time.Time) { c.observe("run_engine", start, err) }(time.Now())
	return c.action(ctx, "run_engine")
}

func (c *Client) action(ctx context.Context, name string) error {
	var res actionResult
	if err := c.backend.postJSON(ctx, "/api/"+name, nil, &res); err != nil {
		return &apperrors.PersistError{Op: name, Err: err}
	}
	if res.Status != "" && res.Status != "success" {
		return &apperrors.PersistError{Op: name, Err: fmt.Errorf("backend status %q: %s", res.Status, res.Error)}
	}
	return nil
}
