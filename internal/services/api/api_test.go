package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/irrixa/internal/actual"
	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
	"github.com/LeonardoBeccarini/irrixa/internal/observability"
	"github.com/LeonardoBeccarini/irrixa/internal/registry"
)

type fakeGateway struct {
	mu         sync.Mutex
	blocks     []entities.Block
	weather    *entities.DailyWeatherSnapshot
	loadErr    error
	saveErr    error
	saved      []entities.ConfigDocument
	actuals    []entities.ActualIrrigationRecord
	engineRuns int
}

func (g *fakeGateway) SaveConfig(_ context.Context, name string, doc entities.ConfigDocument) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return &apperrors.PersistError{Op: "save_config", Block: name, Err: g.saveErr}
	}
	g.saved = append(g.saved, doc)
	for i := range g.blocks {
		if g.blocks[i].Name == name {
			g.blocks[i].SoilType = doc.Config.SoilType
			g.blocks[i].RAWUsed = doc.Config.RAWMMPerM
		}
	}
	return nil
}

func (g *fakeGateway) SaveActualIrrigation(_ context.Context, rec entities.ActualIrrigationRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return &apperrors.PersistError{Op: "save_actual_irrigation", Block: rec.BlockName, Err: g.saveErr}
	}
	g.actuals = append(g.actuals, rec)
	return nil
}

func (g *fakeGateway) LoadBlocks(context.Context) ([]entities.Block, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loadErr != nil {
		return nil, &apperrors.LoadError{Op: "load_blocks", Err: g.loadErr}
	}
	return append([]entities.Block(nil), g.blocks...), nil
}

func (g *fakeGateway) LoadWeather(context.Context, string) (*entities.DailyWeatherSnapshot, error) {
	return g.weather, nil
}

func (g *fakeGateway) RefreshWeather(context.Context) error { return nil }

func (g *fakeGateway) RunEngine(context.Context) error {
	g.mu.Lock()
	g.engineRuns++
	g.mu.Unlock()
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	return nil
}

type fixture struct {
	gw     *fakeGateway
	pub    *fakePublisher
	reg    *registry.Registry
	svc    *APIService
	health *health.Server
}

func f64(v float64) *float64 { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := &fakeGateway{
		blocks: []entities.Block{{
			Name: "D2_Bay_1", Crop: entities.CropGrapes, Stage: entities.StageFlowering,
			IrrigationType: entities.IrrigationDrip, ApplicationRateMMHr: 2.5,
			SoilType: entities.SoilLoam, RAWUsed: 55, NDVIDisplayMode: entities.NDVIAverage,
			IrrigationMM: 0, RainMM: f64(5), ConfidenceScore: f64(72),
		}},
		weather: &entities.DailyWeatherSnapshot{Date: "2024-05-01", EToEstimated: f64(4.25)},
	}
	hs := health.NewServer()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	reg := registry.New(gw, time.UTC, Observers{metrics, NewHealthReporter(hs)})
	pub := &fakePublisher{}
	svc := NewAPIService(Options{
		Gateway:    gw,
		Registry:   reg,
		Reconciler: actual.NewReconciler(gw, time.UTC),
		Publisher:  pub,
		Metrics:    metrics,
		Gatherer:   prometheus.NewRegistry(),
	})
	return &fixture{gw: gw, pub: pub, reg: reg, svc: svc, health: hs}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	f.svc.Handler().ServeHTTP(rr, req)
	return rr
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	if err := f.reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
}

func TestReadyzFollowsRegistry(t *testing.T) {
	f := newFixture(t)
	if rr := f.do(t, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before load, got %d", rr.Code)
	}
	resp, _ := f.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: RegistryService})
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", resp.GetStatus())
	}
	f.load(t)
	if rr := f.do(t, http.MethodGet, "/readyz", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after load, got %d", rr.Code)
	}
	resp, _ = f.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: RegistryService})
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}
}

func TestListBlocksClassifies(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	rr := f.do(t, http.MethodGet, "/api/v1/blocks", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		State  string `json:"state"`
		Blocks []struct {
			Block  string `json:"block"`
			Status struct {
				Tier           string `json:"tier"`
				SkippedForRain bool   `json:"skipped_for_rain"`
			} `json:"status"`
		} `json:"blocks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != "loaded" || len(resp.Blocks) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if b := resp.Blocks[0]; b.Block != "D2_Bay_1" || b.Status.Tier != "warn" || !b.Status.SkippedForRain {
		t.Fatalf("unexpected block view %+v", b)
	}
}

func TestGetBlockNotFound(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	if rr := f.do(t, http.MethodGet, "/api/v1/blocks/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestTodaysWeather(t *testing.T) {
	f := newFixture(t)
	if rr := f.do(t, http.MethodGet, "/api/v1/weather/today", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before load, got %d", rr.Code)
	}
	f.load(t)
	rr := f.do(t, http.MethodGet, "/api/v1/weather/today", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"eto":"4.3 mm"`) {
		t.Fatalf("unexpected weather response %d %s", rr.Code, rr.Body.String())
	}
}

func TestSaveConfigAppliesSoilDefault(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	rr := f.do(t, http.MethodPost, "/api/v1/blocks/D2_Bay_1/config", `{"soil_type":"sand"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(f.gw.saved) != 1 || f.gw.saved[0].Config.RAWMMPerM != 30 {
		t.Fatalf("expected RAW 30 persisted, got %+v", f.gw.saved)
	}
	if b, _ := f.reg.Block("D2_Bay_1"); b.SoilType != entities.SoilSand {
		t.Fatalf("registry not refreshed after save: %+v", b)
	}
	if len(f.pub.topics) != 1 || f.pub.topics[0] != "event/configSaved/D2_Bay_1" {
		t.Fatalf("unexpected announcements %v", f.pub.topics)
	}
}

func TestSaveConfigValidation(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	for _, body := range []string{`{"raw_mm_per_m":0}`, `{"soil_type":"peat"}`, `{"crop":"wheat"}`} {
		rr := f.do(t, http.MethodPost, "/api/v1/blocks/D2_Bay_1/config", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
	if len(f.gw.saved) != 0 || len(f.pub.topics) != 0 {
		t.Fatalf("invalid config reached the backend")
	}
}

func TestSaveConfigPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.gw.saveErr = errors.New("connection refused")
	rr := f.do(t, http.MethodPost, "/api/v1/blocks/D2_Bay_1/config", `{"soil_type":"clay"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if b, _ := f.reg.Block("D2_Bay_1"); b.SoilType != entities.SoilLoam {
		t.Fatalf("registry changed after failed save")
	}
	if len(f.pub.topics) != 0 {
		t.Fatalf("failed save must not be announced")
	}
}

func TestRecordActual(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	rr := f.do(t, http.MethodPost, "/api/v1/actual-irrigation", `{"block":"D2_Bay_1","date":"2024-05-01","mm":"1.3"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = f.do(t, http.MethodPost, "/api/v1/actual-irrigation", `{"block":"D2_Bay_1","date":"2024-05-01","mm":2}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("numeric mm: expected 201, got %d", rr.Code)
	}
	if len(f.gw.actuals) != 2 || f.gw.actuals[0].DepthMM != 1.3 || f.gw.actuals[1].DepthMM != 2 {
		t.Fatalf("unexpected records %+v", f.gw.actuals)
	}
	if len(f.pub.topics) != 2 || f.pub.topics[0] != "event/actualIrrigation/D2_Bay_1" {
		t.Fatalf("unexpected announcements %v", f.pub.topics)
	}
}

func TestRecordActualInvalid(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	for _, body := range []string{
		`{"block":"D2_Bay_1","date":"2024-05-01","mm":"abc"}`,
		`{"block":"D2_Bay_1","date":"2024-05-01"}`,
		`{"date":"2024-05-01","mm":1}`,
	} {
		if rr := f.do(t, http.MethodPost, "/api/v1/actual-irrigation", body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
	if len(f.gw.actuals) != 0 {
		t.Fatalf("invalid input reached the backend")
	}
}

func TestRunEngineRefreshes(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/v1/engine/run", "")
	if rr.Code != http.StatusOK || f.gw.engineRuns != 1 {
		t.Fatalf("unexpected %d runs=%d", rr.Code, f.gw.engineRuns)
	}
	if f.reg.State() != registry.Loaded {
		t.Fatalf("registry not refreshed after engine run")
	}
}

func TestRefreshRegistryFailureKeepsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.gw.loadErr = errors.New("503")
	if rr := f.do(t, http.MethodPost, "/api/v1/registry/refresh", ""); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if len(f.reg.CurrentBlocks()) != 1 {
		t.Fatalf("snapshot lost after failed refresh")
	}
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	rr := f.do(t, http.MethodGet, "/api/v1/blocks/export.xlsx", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	x, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer x.Close()
	rows, err := x.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "block" || rows[1][0] != "D2_Bay_1" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
