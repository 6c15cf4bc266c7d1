package entities

// ActualIrrigationRecord is the depth an operator reports as really applied on a day.
type ActualIrrigationRecord struct {
	BlockName string  `json:"block"`
	Date      string  `json:"date"` // YYYY-MM-DD
	DepthMM   float64 `json:"mm"`
}
