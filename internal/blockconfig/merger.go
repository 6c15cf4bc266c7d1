// Package blockconfig merges operator edits into a block configuration.
package blockconfig

import (
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// ConfigPatch is a partial edit; nil fields are left untouched.
type ConfigPatch struct {
	Name                *string                   `json:"name,omitempty"`
	Crop                *entities.Crop            `json:"crop,omitempty"`
	Stage               *entities.Stage           `json:"crop_stage,omitempty"`
	IrrigationType      *entities.IrrigationType  `json:"irrigation_type,omitempty"`
	ApplicationRateMMHr *float64                  `json:"application_rate_mm_hr,omitempty"`
	SoilType            *entities.SoilType        `json:"soil_type,omitempty"`
	RAWMMPerM           *float64                  `json:"raw_mm_per_m,omitempty"`
	NDVIDisplayMode     *entities.NDVIDisplayMode `json:"ndvi_display_mode,omitempty"`
}

// Merger is the editable draft of one block's configuration.
// It belongs to a single edit session and is not safe for concurrent use.
type Merger struct {
	block string
	draft entities.BlockConfig
}

// NewMerger opens a draft from the block's current values.
// Missing soil type and display mode fall back to loam and average.
func NewMerger(b entities.Block) *Merger {
	d := entities.BlockConfig{
		Name:                b.Name,
		Crop:                b.Crop,
		Stage:               b.Stage,
		IrrigationType:      b.IrrigationType,
		ApplicationRateMMHr: b.ApplicationRateMMHr,
		SoilType:            b.SoilType,
		RAWMMPerM:           b.RAWUsed,
		NDVIDisplayMode:     b.NDVIDisplayMode,
	}
	if d.SoilType == "" {
		d.SoilType = entities.SoilLoam
	}
	if d.NDVIDisplayMode == "" {
		d.NDVIDisplayMode = entities.NDVIAverage
	}
	return &Merger{block: b.Name, draft: d}
}

// BlockName is the key of the block the draft was opened for.
func (m *Merger) BlockName() string { return m.block }

// Draft returns a copy of the current draft.
func (m *Merger) Draft() entities.BlockConfig { return m.draft }

func (m *Merger) SetName(v string)                            { m.draft.Name = v }
func (m *Merger) SetCrop(v entities.Crop)                     { m.draft.Crop = v }
func (m *Merger) SetStage(v entities.Stage)                   { m.draft.Stage = v }
func (m *Merger) SetIrrigationType(v entities.IrrigationType) { m.draft.IrrigationType = v }
func (m *Merger) SetApplicationRate(v float64)                { m.draft.ApplicationRateMMHr = v }
func (m *Merger) SetRAW(v float64)                            { m.draft.RAWMMPerM = v }
func (m *Merger) SetNDVIDisplayMode(v entities.NDVIDisplayMode) {
	m.draft.NDVIDisplayMode = v
}

// SetSoilType changes the soil and moves RAW along with it when RAW was still the
// old soil's default. On error the draft is unchanged.
func (m *Merger) SetSoilType(v entities.SoilType) error {
	raw, err := ResolveRAW(m.draft.SoilType, m.draft.RAWMMPerM, v)
	if err != nil {
		return err
	}
	m.draft.RAWMMPerM = raw
	m.draft.SoilType = v
	return nil
}

// Apply runs the setters for every field present in p. Soil type is applied
// before RAW, so an explicit RAW in the same patch wins over the soil default.
func (m *Merger) Apply(p ConfigPatch) error {
	if p.Name != nil {
		m.SetName(*p.Name)
	}
	if p.Crop != nil {
		m.SetCrop(*p.Crop)
	}
	if p.Stage != nil {
		m.SetStage(*p.Stage)
	}
	if p.IrrigationType != nil {
		m.SetIrrigationType(*p.IrrigationType)
	}
	if p.ApplicationRateMMHr != nil {
		m.SetApplicationRate(*p.ApplicationRateMMHr)
	}
	if p.SoilType != nil {
		if err := m.SetSoilType(*p.SoilType); err != nil {
			return err
		}
	}
	if p.RAWMMPerM != nil {
		m.SetRAW(*p.RAWMMPerM)
	}
	if p.NDVIDisplayMode != nil {
		m.SetNDVIDisplayMode(*p.NDVIDisplayMode)
	}
	return nil
}

// Finalize validates the draft and returns the document to persist.
func (m *Merger) Finalize() (entities.ConfigDocument, error) {
	if err := validateConfig(m.draft); err != nil {
		return entities.ConfigDocument{}, err
	}
	return entities.ConfigDocument{Block: m.block, Config: m.draft}, nil
}
