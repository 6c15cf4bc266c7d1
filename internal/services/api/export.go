package api

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/LeonardoBeccarini/irrixa/internal/classify"
	"github.com/LeonardoBeccarini/irrixa/internal/model"
)

const summarySheet = "Summary"

var summaryHeader = []interface{}{
	"block", "date", "crop", "crop_stage", "soil_type", "raw_mm_used",
	"ndvi", "kc", "eto", "irrigation_mm", "irrigation_minutes", "confidence", "tier",
	"rain_mm", "skipped_for_rain", "actual_irrigation_mm", "irrigation_gap",
}

// optional numbers become empty cells
func cell(p *float64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

// writeSummaryXLSX renders the daily summary sheet of the given blocks.
func writeSummaryXLSX(w io.Writer, blocks []model.Block, date string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	for i, b := range blocks {
		rowDate := b.Date
		if rowDate == "" {
			rowDate = date
		}
		rain := 0.0
		if b.RainMM != nil {
			rain = *b.RainMM
		}
		row := []interface{}{
			b.Name, rowDate, string(b.Crop), string(b.Stage), string(b.SoilType), b.RAWUsed,
			cell(b.NDVI), cell(b.Kc), cell(b.ETo), b.IrrigationMM, cell(b.IrrigationMinutes),
			classify.ConfidenceValue(b.ConfidenceScore), string(classify.Confidence(b.ConfidenceScore)),
			cell(b.RainMM), classify.SkippedForRain(b.IrrigationMM, rain),
			cell(b.ActualIrrigationMM), cell(b.IrrigationGap),
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, addr, &row); err != nil {
			return fmt.Errorf("row %s: %w", b.Name, err)
		}
	}
	return f.Write(w)
}
