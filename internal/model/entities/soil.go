package entities

// SoilType of a block. "sandy loam" contains a space on the wire.
type SoilType string

const (
	SoilClay      SoilType = "clay"
	SoilLoam      SoilType = "loam"
	SoilSandyLoam SoilType = "sandy loam"
	SoilSand      SoilType = "sand"
)

var SoilTypes = []SoilType{SoilClay, SoilLoam, SoilSandyLoam, SoilSand}

// default readily available water per soil, mm per metre of root zone
var soilRAWDefaults = map[SoilType]float64{
	SoilClay:      70,
	SoilLoam:      55,
	SoilSandyLoam: 45,
	SoilSand:      30,
}

func (s SoilType) Valid() bool {
	_, ok := soilRAWDefaults[s]
	return ok
}

// DefaultRAW returns the default RAW (mm/m) for the soil type.
func DefaultRAW(s SoilType) (float64, bool) {
	v, ok := soilRAWDefaults[s]
	return v, ok
}
