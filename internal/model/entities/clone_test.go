package entities

import (
	"reflect"
	"testing"
)

func ptr(v float64) *float64 { return &v }

// every pointer field must be reallocated, including ones added later
func assertNoSharedPointers(t *testing.T, a, b reflect.Value) {
	t.Helper()
	for i := 0; i < a.NumField(); i++ {
		fa, fb := a.Field(i), b.Field(i)
		if fa.Kind() != reflect.Pointer || fa.IsNil() {
			continue
		}
		if fa.Pointer() == fb.Pointer() {
			t.Fatalf("field %s shared by clone", a.Type().Field(i).Name)
		}
	}
}

func TestBlockClone(t *testing.T) {
	b := Block{
		Name: "A", IrrigationMM: 3,
		IrrigationMinutes: ptr(1), ETo: ptr(2), RainMM: ptr(3), Kc: ptr(4), NDVI: ptr(5),
		ConfidenceScore: ptr(72), ActualIrrigationMM: ptr(6), IrrigationGap: ptr(7),
	}
	c := b.Clone()
	if !reflect.DeepEqual(b, c) {
		t.Fatalf("clone differs: %+v vs %+v", b, c)
	}
	assertNoSharedPointers(t, reflect.ValueOf(b), reflect.ValueOf(c))

	*c.ConfidenceScore = 10
	if *b.ConfidenceScore != 72 {
		t.Fatalf("original mutated through clone")
	}
}

func TestWeatherClone(t *testing.T) {
	var nilW *DailyWeatherSnapshot
	if nilW.Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
	w := &DailyWeatherSnapshot{
		Date: "2024-05-01", EToEstimated: ptr(4.2), Temperature: ptr(20), TempMin: ptr(12), TempMax: ptr(28),
		Humidity: ptr(55), WindSpeed: ptr(3), PrecipMM: ptr(0), SolarGHI: ptr(600),
		RainYesterday: ptr(1), RainForecast: ptr(2),
	}
	c := w.Clone()
	if !reflect.DeepEqual(w, c) {
		t.Fatalf("clone differs")
	}
	assertNoSharedPointers(t, reflect.ValueOf(*w), reflect.ValueOf(*c))
}
