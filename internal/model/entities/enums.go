package entities

// Crop grown on a block.
type Crop string

const (
	CropBroccoli Crop = "broccoli"
	CropBeans    Crop = "beans"
	CropCitrus   Crop = "citrus"
	CropGrapes   Crop = "grapes"
	CropAlmonds  Crop = "almonds"
)

var Crops = []Crop{CropBroccoli, CropBeans, CropCitrus, CropGrapes, CropAlmonds}

func (c Crop) Valid() bool {
	for _, v := range Crops {
		if c == v {
			return true
		}
	}
	return false
}

// Stage is the phenological stage of the crop.
type Stage string

const (
	StageEmergent    Stage = "emergent"
	StageVegetative  Stage = "vegetative"
	StageFlowering   Stage = "flowering"
	StageHarvest     Stage = "harvest"
	StageUnspecified Stage = "unspecified"
)

var Stages = []Stage{StageEmergent, StageVegetative, StageFlowering, StageHarvest, StageUnspecified}

func (s Stage) Valid() bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// IrrigationType is the hardware installed on the block.
type IrrigationType string

const (
	IrrigationOverheadSpray IrrigationType = "overhead_spray"
	IrrigationDrip          IrrigationType = "drip"
	IrrigationMicrojet      IrrigationType = "microjet"
)

var IrrigationTypes = []IrrigationType{IrrigationOverheadSpray, IrrigationDrip, IrrigationMicrojet}

func (t IrrigationType) Valid() bool {
	for _, v := range IrrigationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// NDVIDisplayMode selects which vegetation-index aggregate the dashboard shows.
type NDVIDisplayMode string

const (
	NDVIAverage NDVIDisplayMode = "average"
	NDVIP80     NDVIDisplayMode = "p80"
)

var NDVIDisplayModes = []NDVIDisplayMode{NDVIAverage, NDVIP80}

func (m NDVIDisplayMode) Valid() bool {
	for _, v := range NDVIDisplayModes {
		if m == v {
			return true
		}
	}
	return false
}
