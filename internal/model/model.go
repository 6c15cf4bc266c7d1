package model

import (
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
	"github.com/LeonardoBeccarini/irrixa/internal/model/messages"
)

// Alias per esporre i tipi comuni ai servizi

type (
	Block                  = entities.Block
	BlockConfig            = entities.BlockConfig
	ConfigDocument         = entities.ConfigDocument
	DailyWeatherSnapshot   = entities.DailyWeatherSnapshot
	ActualIrrigationRecord = entities.ActualIrrigationRecord
	ConfigSavedEvent       = messages.ConfigSavedEvent
	ActualIrrigationEvent  = messages.ActualIrrigationEvent
)
