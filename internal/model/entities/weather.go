package entities

// DailyWeatherSnapshot is one day of the weather feed. Every measurement may be missing.
type DailyWeatherSnapshot struct {
	Date          string   `json:"date"`
	EToEstimated  *float64 `json:"eto_estimated,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"` // °C
	TempMin       *float64 `json:"temp_min,omitempty"`
	TempMax       *float64 `json:"temp_max,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	PrecipMM      *float64 `json:"precip_mm,omitempty"`
	SolarGHI      *float64 `json:"solar_ghi,omitempty"`
	RainYesterday *float64 `json:"rain_yesterday,omitempty"`
	RainForecast  *float64 `json:"rain_forecast,omitempty"`
}
