package messages

import (
	"time"

	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// ConfigSavedEvent is published by the api service once the backend accepted a block configuration.
type ConfigSavedEvent struct {
	EventID   string               `json:"event_id"`
	Block     string               `json:"block"`
	Config    entities.BlockConfig `json:"config"`
	Timestamp time.Time            `json:"timestamp"`
}
