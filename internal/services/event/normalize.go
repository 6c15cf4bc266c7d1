package event

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement holding every stored announcement.
const Measurement = "irrixa_event"

// EventToPoint normalizza CommonEvent in un *write.Point per InfluxDB.
func EventToPoint(evt CommonEvent) *write.Point {
	tags := map[string]string{
		"event_type": evt.EventType,
		"block":      evt.Block,
	}
	if evt.Date != "" {
		tags["date"] = evt.Date
	}

	fields := make(map[string]interface{}, len(evt.Fields)+2)
	for k, v := range evt.Fields {
		fields[k] = v
	}
	if evt.EventID != "" {
		fields["event_id"] = evt.EventID
	}
	// almeno un field numerico per ogni punto
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	return influxdb2.NewPoint(Measurement, tags, fields, evt.Timestamp)
}
