// Package report implements the optional output artifacts of §4.16:
// report.xlsx and summary.pdf, generated alongside the plain CSV outputs.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"chalet/internal/accounting"
	"chalet/internal/apperror"
	"chalet/internal/csvio"
)

// Summary bundles the run-level figures both generators render.
type Summary struct {
	Mode             string
	ObjectiveValue   float64
	NumStations      int
	NumPairsCovered  int
	NumPairsTotal    int
	WallTimeSeconds  float64
}

// BuildExcel renders report.xlsx: a coverage sheet and a station-usage
// sheet, in the teacher's per-table-per-sheet, styled-header-row shape.
func BuildExcel(summary Summary, coverage []csvio.CoverageRow, stations []csvio.StationRow, usage []accounting.StationUsage) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeSummarySheet(f, headerStyle, summary)
	writeCoverageSheet(f, headerStyle, coverage)
	writeStationSheet(f, headerStyle, stations, usage)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Callback("excel report generation failed", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, headerStyle int, s Summary) {
	const sheet = "Summary"
	f.NewSheet(sheet)
	rows := [][2]any{
		{"Mode", s.Mode},
		{"Objective Value", s.ObjectiveValue},
		{"Stations Built", s.NumStations},
		{"Pairs Covered", s.NumPairsCovered},
		{"Pairs Total", s.NumPairsTotal},
		{"Wall Time (s)", s.WallTimeSeconds},
	}
	f.SetCellValue(sheet, "A1", "Run Summary")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), r[0])
		f.SetCellValue(sheet, cellAddr("B", row), r[1])
	}
	f.SetColWidth(sheet, "A", "B", 22)
}

func writeCoverageSheet(f *excelize.File, headerStyle int, rows []csvio.CoverageRow) {
	const sheet = "Coverage"
	f.NewSheet(sheet)
	headers := []string{"Origin", "Destination", "Demand", "Direct Distance", "Direct Time", "Feasible", "Stations", "Fuel Stops", "Route Distance", "Route Time"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "J1", headerStyle)
	for i, r := range rows {
		row := i + 2
		stations := ""
		for j, id := range r.Stations {
			if j > 0 {
				stations += "/"
			}
			stations += fmt.Sprintf("%d", id)
		}
		f.SetCellValue(sheet, cellAddr("A", row), r.OriginID)
		f.SetCellValue(sheet, cellAddr("B", row), r.DestinationID)
		f.SetCellValue(sheet, cellAddr("C", row), r.Demand)
		f.SetCellValue(sheet, cellAddr("D", row), r.DirectDistance)
		f.SetCellValue(sheet, cellAddr("E", row), r.DirectTime)
		f.SetCellValue(sheet, cellAddr("F", row), r.Feasible)
		f.SetCellValue(sheet, cellAddr("G", row), stations)
		f.SetCellValue(sheet, cellAddr("H", row), r.FuelStops)
		f.SetCellValue(sheet, cellAddr("I", row), r.RouteDistance)
		f.SetCellValue(sheet, cellAddr("J", row), r.RouteTime)
	}
	f.SetColWidth(sheet, "A", "J", 15)
}

func writeStationSheet(f *excelize.File, headerStyle int, rows []csvio.StationRow, usage []accounting.StationUsage) {
	const sheet = "Stations"
	f.NewSheet(sheet)
	headers := []string{"ID", "Type", "Demand Served", "Charged Energy", "Visits"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	visits := make(map[int64]int, len(usage))
	for _, u := range usage {
		visits[u.StationID] = u.Visits
	}
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), r.ID)
		f.SetCellValue(sheet, cellAddr("B", row), r.Type)
		f.SetCellValue(sheet, cellAddr("C", row), r.Demand)
		f.SetCellValue(sheet, cellAddr("D", row), r.Energy)
		f.SetCellValue(sheet, cellAddr("E", row), visits[r.ID])
	}
	f.SetColWidth(sheet, "A", "E", 18)
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
