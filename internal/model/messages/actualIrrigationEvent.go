package messages

import "time"

// ActualIrrigationEvent is published after an actual-irrigation record was stored by the backend.
type ActualIrrigationEvent struct {
	EventID   string    `json:"event_id"`
	Block     string    `json:"block"`
	Date      string    `json:"date"` // YYYY-MM-DD
	MM        float64   `json:"mm"`
	Timestamp time.Time `json:"timestamp"`
}
