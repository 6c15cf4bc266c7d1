package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
)

// ActualIrrigation is one stored actual-irrigation announcement.
type ActualIrrigation struct {
	Block string  `json:"block"`
	Date  string  `json:"date"`
	MM    float64 `json:"mm"`
	Time  string  `json:"time"` // RFC3339
}

type historyParams struct {
	Block     string
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseHistory(r *http.Request, defMin, defLim, defTOms int) historyParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return historyParams{
		Block:     strings.TrimSpace(q.Get("block")),
		Minutes:   get("minutes", defMin, 1, 90*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildFlux(bucket string, p historyParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q and r.event_type == %q)
  |> filter(fn: (r) => r._field == "mm")
`, bucket, p.Minutes, Measurement, TypeActualIrrigation)
	if p.Block != "" {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r.block == %q)\n", p.Block)
	}
	fmt.Fprintf(&b, `  |> group()
  |> keep(columns: ["_time","_value","block","date"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, p.Limit)
	return b.String()
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}

func tagString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// NewActualLatestHandler serves GET /events/actual/latest?limit=20[&minutes=10080][&block=X]
func NewActualLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseHistory(r, 7*24*60, 20, 2000)

		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		res, err := influx.QueryAPI(org).Query(ctx, buildFlux(bucket, p))
		if err != nil {
			logger.Errorf(ctx, "influx query: %v", err)
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		defer res.Close()

		out := make([]ActualIrrigation, 0, p.Limit)
		for res.Next() {
			rec := res.Record()
			out = append(out, ActualIrrigation{
				Block: tagString(rec.ValueByKey("block")),
				Date:  tagString(rec.ValueByKey("date")),
				MM:    toFloat(rec.Value()),
				Time:  rec.Time().UTC().Format(time.RFC3339),
			})
		}
		if res.Err() != nil {
			logger.Warnf(ctx, "influx iteration: %v", res.Err())
			w.Header().Set("X-Error", "influx-iter-error")
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}
