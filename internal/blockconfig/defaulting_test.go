package blockconfig

import (
	"errors"
	"testing"

	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

func TestResolveRAWFollowsDefault(t *testing.T) {
	for _, from := range entities.SoilTypes {
		for _, to := range entities.SoilTypes {
			oldDef, _ := entities.DefaultRAW(from)
			newDef, _ := entities.DefaultRAW(to)
			got, err := ResolveRAW(from, oldDef, to)
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", from, to, err)
			}
			if got != newDef {
				t.Fatalf("%s -> %s: got %v, want default %v", from, to, got, newDef)
			}
		}
	}
}

func TestResolveRAWKeepsOverride(t *testing.T) {
	for _, from := range entities.SoilTypes {
		for _, to := range entities.SoilTypes {
			got, err := ResolveRAW(from, 42.5, to)
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", from, to, err)
			}
			if got != 42.5 {
				t.Fatalf("%s -> %s: override lost, got %v", from, to, got)
			}
		}
	}
}

func TestResolveRAWKnownTransitions(t *testing.T) {
	if got, _ := ResolveRAW(entities.SoilLoam, 55, entities.SoilSand); got != 30 {
		t.Fatalf("loam/55 -> sand: got %v, want 30", got)
	}
	if got, _ := ResolveRAW(entities.SoilLoam, 40, entities.SoilSand); got != 40 {
		t.Fatalf("loam/40 -> sand: got %v, want 40", got)
	}
	if got, _ := ResolveRAW(entities.SoilClay, 70, entities.SoilSandyLoam); got != 45 {
		t.Fatalf("clay/70 -> sandy loam: got %v, want 45", got)
	}
}

func TestResolveRAWUnknownSoil(t *testing.T) {
	var ce *apperrors.ConfigurationError
	if _, err := ResolveRAW("peat", 55, entities.SoilSand); !errors.As(err, &ce) {
		t.Fatalf("unknown old soil: expected ConfigurationError, got %v", err)
	}
	if _, err := ResolveRAW(entities.SoilLoam, 55, "peat"); !errors.As(err, &ce) || ce.SoilType != "peat" {
		t.Fatalf("unknown new soil: expected ConfigurationError for peat, got %v", err)
	}
}
