package gateway

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// ---------- Upstream payloads ----------
// The engine writes numbers as JSON numbers, older runs wrote some as strings.

type doc map[string]any

func (d doc) str(key string) string {
	switch x := d[key].(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func (d doc) num(key string) *float64 {
	switch x := d[key].(type) {
	case float64:
		return &x
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	case bool:
		v := 0.0
		if x {
			v = 1
		}
		return &v
	}
	return nil
}

func (d doc) flag(key string) bool {
	switch x := d[key].(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(x))
		return b
	}
	return false
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

type blockDoc struct{ entities.Block }

func (b *blockDoc) UnmarshalJSON(raw []byte) error {
	var d doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return err
	}
	name := d.str("block")
	if name == "" {
		return errors.New("block entry without name")
	}
	b.Block = entities.Block{
		Name:                name,
		Date:                d.str("date"),
		Crop:                entities.Crop(d.str("crop")),
		Stage:               entities.Stage(d.str("crop_stage")),
		IrrigationType:      entities.IrrigationType(d.str("irrigation_type")),
		ApplicationRateMMHr: orZero(d.num("application_rate_mm_hr")),
		SoilType:            entities.SoilType(d.str("soil_type")),
		RAWUsed:             orZero(d.num("raw_mm_used")),
		NDVIDisplayMode:     entities.NDVIDisplayMode(d.str("ndvi_display_mode")),
		IrrigationMM:        orZero(d.num("irrigation_mm")),
		IrrigationMinutes:   d.num("irrigation_minutes"),
		ETo:                 d.num("eto"),
		RainMM:              d.num("rain_mm"),
		Kc:                  d.num("kc"),
		NDVI:                d.num("ndvi"),
		ConfidenceScore:     d.num("confidence_score"),
		StressFlag:          d.flag("stress_flag"),
		ActualIrrigationMM:  d.num("actual_irrigation_mm"),
		IrrigationGap:       d.num("irrigation_gap"),
	}
	return nil
}

type weatherDoc struct{ entities.DailyWeatherSnapshot }

func (w *weatherDoc) UnmarshalJSON(raw []byte) error {
	var d doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return err
	}
	w.DailyWeatherSnapshot = entities.DailyWeatherSnapshot{
		Date:          d.str("date"),
		EToEstimated:  d.num("eto_estimated"),
		Temperature:   d.num("temperature"),
		TempMin:       d.num("temp_min"),
		TempMax:       d.num("temp_max"),
		Humidity:      d.num("humidity"),
		WindSpeed:     d.num("wind_speed"),
		PrecipMM:      d.num("precip_mm"),
		SolarGHI:      d.num("solar_ghi"),
		RainYesterday: d.num("rain_yesterday"),
		RainForecast:  d.num("rain_forecast"),
	}
	return nil
}

// actionResult is the backend reply to run_engine and refresh_weather.
type actionResult struct {
	Status string `json:"status"`
	Output string `json:"output"`
	Error  string `json:"error"`
}
