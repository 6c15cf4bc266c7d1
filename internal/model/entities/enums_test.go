package entities

import "testing"

func TestEnumListsAreValid(t *testing.T) {
	for _, c := range Crops {
		if !c.Valid() {
			t.Fatalf("crop %q", c)
		}
	}
	for _, s := range Stages {
		if !s.Valid() {
			t.Fatalf("stage %q", s)
		}
	}
	for _, it := range IrrigationTypes {
		if !it.Valid() {
			t.Fatalf("irrigation type %q", it)
		}
	}
	for _, m := range NDVIDisplayModes {
		if !m.Valid() {
			t.Fatalf("display mode %q", m)
		}
	}
	if NDVIDisplayMode("max").Valid() || Crop("").Valid() || SoilType("peat").Valid() {
		t.Fatalf("unknown values must be invalid")
	}
}
