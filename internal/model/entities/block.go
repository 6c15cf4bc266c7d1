package entities

// Block is a named irrigation zone as produced by the irrigation engine.
// Only the engine creates blocks; Name is the lookup key and never changes.
type Block struct {
	Name string `json:"block"`
	Date string `json:"date,omitempty"` // YYYY-MM-DD of the engine run

	// configurazione agronomica
	Crop                Crop            `json:"crop"`
	Stage               Stage           `json:"crop_stage"`
	IrrigationType      IrrigationType  `json:"irrigation_type"`
	ApplicationRateMMHr float64         `json:"application_rate_mm_hr"`
	SoilType            SoilType        `json:"soil_type"`
	RAWUsed             float64         `json:"raw_mm_used"` // mm/m
	NDVIDisplayMode     NDVIDisplayMode `json:"ndvi_display_mode"`

	// telemetria calcolata dal motore
	IrrigationMM      float64  `json:"irrigation_mm"`
	IrrigationMinutes *float64 `json:"irrigation_minutes,omitempty"`
	ETo               *float64 `json:"eto,omitempty"`
	RainMM            *float64 `json:"rain_mm,omitempty"`
	Kc                *float64 `json:"kc,omitempty"`
	NDVI              *float64 `json:"ndvi,omitempty"`
	ConfidenceScore   *float64 `json:"confidence_score,omitempty"` // 0..100
	StressFlag        bool     `json:"stress_flag"`

	// eco del valore reale registrato per la giornata
	ActualIrrigationMM *float64 `json:"actual_irrigation_mm,omitempty"`
	IrrigationGap      *float64 `json:"irrigation_gap,omitempty"`
}
