package blockconfig

import (
	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

// ResolveRAW decides the RAW a block keeps when its soil type changes.
// A RAW equal to the old soil's default follows the soil to the new default;
// any other value is an operator override and is kept.
func ResolveRAW(oldSoil entities.SoilType, oldRAW float64, newSoil entities.SoilType) (float64, error) {
	oldDefault, ok := entities.DefaultRAW(oldSoil)
	if !ok {
		return 0, &apperrors.ConfigurationError{SoilType: string(oldSoil)}
	}
	newDefault, ok := entities.DefaultRAW(newSoil)
	if !ok {
		return 0, &apperrors.ConfigurationError{SoilType: string(newSoil)}
	}
	if oldRAW == oldDefault {
		return newDefault, nil
	}
	return oldRAW, nil
}
