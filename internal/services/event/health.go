package event

import (
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is the part of the broker client the probes look at.
type Pinger interface {
	IsConnectionOpen() bool
}

// probe gathers what both endpoints need from the dependencies.
type probe struct {
	mqtt     Pinger
	influxOK func() bool
	writer   *Writer
}

func (p probe) mqttUp() bool   { return p.mqtt != nil && p.mqtt.IsConnectionOpen() }
func (p probe) influxUp() bool { return p.influxOK != nil && p.influxOK() }

// NewHealthHandler serves /healthz: ok, degraded or down, always 200.
// Status stays degraded until writes have been clean for quiet.
func NewHealthHandler(m Pinger, influxOK func() bool, w *Writer) http.Handler {
	p := probe{mqtt: m, influxOK: influxOK, writer: w}
	const quiet = 30 * time.Second

	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		stats := p.writer.Stats()
		body := struct {
			Status          string           `json:"status"`
			MQTTConnected   bool             `json:"mqtt_connected"`
			InfluxOK        bool             `json:"influx_ok"`
			WriteFailures   int64            `json:"write_failures"`
			LastWriteErrorS float64          `json:"last_write_error_age_sec"`
			Ingested        map[string]int64 `json:"ingested"`
		}{
			MQTTConnected:   p.mqttUp(),
			InfluxOK:        p.influxUp(),
			WriteFailures:   stats.WriteFailures,
			LastWriteErrorS: stats.LastErrorAge.Seconds(),
			Ingested:        stats.Ingested,
		}
		switch {
		case body.MQTTConnected && body.InfluxOK && stats.LastErrorAge > quiet:
			body.Status = "ok"
		case body.MQTTConnected || body.InfluxOK:
			body.Status = "degraded"
		default:
			body.Status = "down"
		}
		writeJSON(rw, http.StatusOK, body)
	})
}

// NewReadyHandler serves /readyz: 200 only when the broker and Influx are up
// and the last write error is older than minErrAge.
func NewReadyHandler(m Pinger, influxOK func() bool, w *Writer, minErrAge time.Duration) http.Handler {
	p := probe{mqtt: m, influxOK: influxOK, writer: w}

	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		ready := p.mqttUp() && p.influxUp() && p.writer.LastErrorAge() > minErrAge
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(rw, code, map[string]bool{"ready": ready})
	})
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}
