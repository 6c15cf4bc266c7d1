package entities

// BlockConfig holds the operator-editable fields of a block.
// JSON names follow the backend's save_config document.
type BlockConfig struct {
	Name                string          `json:"name" validate:"required,notblank"`
	Crop                Crop            `json:"crop" validate:"crop"`
	Stage               Stage           `json:"crop_stage" validate:"crop_stage"`
	IrrigationType      IrrigationType  `json:"irrigation_type" validate:"irrigation_type"`
	ApplicationRateMMHr float64         `json:"application_rate_mm_hr" validate:"gt=0"`
	SoilType            SoilType        `json:"soil_type" validate:"soil_type"`
	RAWMMPerM           float64         `json:"raw_mm_per_m" validate:"gt=0"`
	NDVIDisplayMode     NDVIDisplayMode `json:"ndvi_display_mode" validate:"ndvi_display_mode"`
}

// ConfigDocument is a finalized configuration ready to be persisted for Block.
type ConfigDocument struct {
	Block  string      `json:"block"`
	Config BlockConfig `json:"config"`
}
