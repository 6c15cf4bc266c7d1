package entities

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a copy of b that shares no memory with it.
func (b Block) Clone() Block {
	b.IrrigationMinutes = cloneFloat(b.IrrigationMinutes)
	b.ETo = cloneFloat(b.ETo)
	b.RainMM = cloneFloat(b.RainMM)
	b.Kc = cloneFloat(b.Kc)
	b.NDVI = cloneFloat(b.NDVI)
	b.ConfidenceScore = cloneFloat(b.ConfidenceScore)
	b.ActualIrrigationMM = cloneFloat(b.ActualIrrigationMM)
	b.IrrigationGap = cloneFloat(b.IrrigationGap)
	return b
}

// Clone returns a copy of w that shares no memory with it. A nil snapshot stays nil.
func (w *DailyWeatherSnapshot) Clone() *DailyWeatherSnapshot {
	if w == nil {
		return nil
	}
	c := *w
	c.EToEstimated = cloneFloat(w.EToEstimated)
	c.Temperature = cloneFloat(w.Temperature)
	c.TempMin = cloneFloat(w.TempMin)
	c.TempMax = cloneFloat(w.TempMax)
	c.Humidity = cloneFloat(w.Humidity)
	c.WindSpeed = cloneFloat(w.WindSpeed)
	c.PrecipMM = cloneFloat(w.PrecipMM)
	c.SolarGHI = cloneFloat(w.SolarGHI)
	c.RainYesterday = cloneFloat(w.RainYesterday)
	c.RainForecast = cloneFloat(w.RainForecast)
	return &c
}
