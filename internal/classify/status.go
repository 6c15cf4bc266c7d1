package classify

import (
	"fmt"
	"strings"

	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// vegetation indices rendered by the engine as PNG maps
var indexImages = []string{"ndvi", "ndre", "gndvi", "evi"}

// BlockStatus is the card view of one block.
type BlockStatus struct {
	Block          string            `json:"block"`
	Confidence     float64           `json:"confidence"`
	Tier           Tier              `json:"tier"`
	SkippedForRain bool              `json:"skipped_for_rain"`
	StressWarning  bool              `json:"stress_warning"`
	Recommendation string            `json:"recommendation"`
	ETo            string            `json:"eto"`
	Rain           string            `json:"rain"`
	Kc             string            `json:"kc"`
	NDVI           string            `json:"ndvi"`
	Actual         string            `json:"actual"`
	Images         map[string]string `json:"images,omitempty"`
}

// Summarize classifies a block for display. date selects the index maps folder.
func Summarize(b entities.Block, date string) BlockStatus {
	rain := 0.0
	if b.RainMM != nil {
		rain = *b.RainMM
	}
	rec := b.IrrigationMM
	st := BlockStatus{
		Block:          b.Name,
		Confidence:     ConfidenceValue(b.ConfidenceScore),
		Tier:           Confidence(b.ConfidenceScore),
		SkippedForRain: SkippedForRain(b.IrrigationMM, rain),
		StressWarning:  b.StressFlag,
		Recommendation: FormatMetricPrecision(&rec, 2, " mm"),
		ETo:            FormatMetricPrecision(b.ETo, 2, " mm"),
		Rain:           FormatMetricPrecision(b.RainMM, 2, " mm"),
		Kc:             FormatMetricPrecision(b.Kc, 2, ""),
		NDVI:           FormatMetricPrecision(b.NDVI, 2, ""),
		Actual:         FormatMetricPrecision(b.ActualIrrigationMM, 1, " mm"),
	}
	if date != "" {
		st.Images = make(map[string]string, len(indexImages))
		base := strings.ToLower(b.Name)
		for _, idx := range indexImages {
			st.Images[idx] = fmt.Sprintf("/NDVI/%s/%s_%s.png", date, base, idx)
		}
	}
	return st
}

// WeatherView is the formatted weather tile.
type WeatherView struct {
	Date        string `json:"date"`
	ETo         string `json:"eto"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Rain        string `json:"rain"`
	Solar       string `json:"solar"`
}

func SummarizeWeather(w entities.DailyWeatherSnapshot) WeatherView {
	solar := "Not available"
	if w.SolarGHI != nil {
		solar = FormatMetric(w.SolarGHI, " W/m²")
	}
	return WeatherView{
		Date:        w.Date,
		ETo:         FormatMetric(w.EToEstimated, " mm"),
		Temperature: FormatMetric(w.Temperature, "°C"),
		Humidity:    FormatMetric(w.Humidity, "%"),
		Wind:        FormatMetric(w.WindSpeed, " km/h"),
		Rain:        FormatMetric(w.PrecipMM, " mm"),
		Solar:       solar,
	}
}
