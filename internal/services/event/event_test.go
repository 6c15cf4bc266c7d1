package event

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
	msg "github.com/LeonardoBeccarini/irrixa/internal/model/messages"
	"github.com/LeonardoBeccarini/irrixa/pkg/dedup"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleActualIrrigationDedup(t *testing.T) {
	var got []CommonEvent
	h := NewMQTTHandler(func(e CommonEvent) { got = append(got, e) }, dedup.New(time.Minute, 100))

	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m := fakeMessage{
		topic: msg.ActualIrrigationTopic("D2_Bay_1"),
		payload: mustJSON(t, msg.ActualIrrigationEvent{
			EventID: "e-1", Block: "D2_Bay_1", Date: "2024-05-01", MM: 1.3, Timestamp: ts,
		}),
	}
	for i := 0; i < 2; i++ {
		if err := h.Handle("event/actualIrrigation/#", m); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	if len(got) != 1 {
		t.Fatalf("expected redelivery to be dropped, got %d events", len(got))
	}
	e := got[0]
	if e.EventType != TypeActualIrrigation || e.Block != "D2_Bay_1" || e.Date != "2024-05-01" || e.Fields["mm"] != 1.3 || !e.Timestamp.Equal(ts) {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestHandleConfigSavedBlockFromTopic(t *testing.T) {
	var got []CommonEvent
	h := NewMQTTHandler(func(e CommonEvent) { got = append(got, e) }, nil)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	payload := mustJSON(t, msg.ConfigSavedEvent{
		EventID: "e-2",
		Config:  entities.BlockConfig{Name: "Bay 1", SoilType: entities.SoilSandyLoam, RAWMMPerM: 45},
	})
	if err := h.Handle("", fakeMessage{topic: "event/configSaved/D3_Bay_2", payload: payload}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(got) != 1 || got[0].Block != "D3_Bay_2" || got[0].Fields["soil_type"] != "sandy loam" || !got[0].Timestamp.Equal(fixed) {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestHandleIgnoresOtherTopicsAndRejectsGarbage(t *testing.T) {
	called := false
	h := NewMQTTHandler(func(CommonEvent) { called = true }, nil)
	if err := h.Handle("", fakeMessage{topic: "sensor/data/x", payload: []byte("{}")}); err != nil || called {
		t.Fatalf("unrelated topic must be ignored")
	}
	if err := h.Handle("", fakeMessage{topic: "event/actualIrrigation/A", payload: []byte("not json")}); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := h.Handle("", fakeMessage{topic: "event/actualIrrigation/A", payload: []byte(`{"mm":2}`)}); err == nil {
		t.Fatalf("expected missing date error")
	}
}

func TestDedupKeyFallsBackToPayload(t *testing.T) {
	if dedupKey("id", []byte("x")) != "id" {
		t.Fatal("event id must be the key")
	}
	if a, b := dedupKey("", []byte("x")), dedupKey("", []byte("x")); a != b || len(a) != 64 {
		t.Fatalf("payload hash not stable: %q %q", a, b)
	}
}

func TestEventToPoint(t *testing.T) {
	p := EventToPoint(CommonEvent{
		EventID: "e-1", EventType: TypeActualIrrigation, Block: "A", Date: "2024-05-01",
		Fields: map[string]interface{}{"mm": 2.5}, Timestamp: time.Unix(1714550400, 0),
	})
	if p.Name() != Measurement {
		t.Fatalf("unexpected measurement %s", p.Name())
	}
	tags := map[string]string{}
	for _, tg := range p.TagList() {
		tags[tg.Key] = tg.Value
	}
	if tags["block"] != "A" || tags["date"] != "2024-05-01" || tags["event_type"] != TypeActualIrrigation {
		t.Fatalf("unexpected tags %v", tags)
	}
	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	if fields["mm"] != 2.5 || fields["count"] != int64(1) || fields["event_id"] != "e-1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestBuildFlux(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/events/actual/latest?limit=9999&minutes=0&block=D2_Bay_1", nil)
	p := parseHistory(r, 60, 20, 2000)
	if p.Limit != 500 || p.Minutes != 1 || p.Block != "D2_Bay_1" {
		t.Fatalf("unexpected params %+v", p)
	}
	q := buildFlux("events", p)
	for _, want := range []string{`from(bucket: "events")`, `range(start: -1m)`, `r.block == "D2_Bay_1"`, `limit(n:500)`, `"irrixa_event"`} {
		if !strings.Contains(q, want) {
			t.Fatalf("flux missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(buildFlux("events", historyParams{Minutes: 5, Limit: 1}), "r.block ==") {
		t.Fatalf("block filter without block")
	}
}

type fakePinger bool

func (p fakePinger) IsConnectionOpen() bool { return bool(p) }

func TestReadyz(t *testing.T) {
	up := func() bool { return true }
	rr := httptest.NewRecorder()
	NewReadyHandler(fakePinger(false), up, nil, time.Second).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with broker down, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	NewReadyHandler(fakePinger(true), up, nil, time.Second).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestHealthzDegraded(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(fakePinger(true), func() bool { return false }, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body map[string]any
	_ = json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "degraded" {
		t.Fatalf("expected degraded, got %v", body)
	}
}
