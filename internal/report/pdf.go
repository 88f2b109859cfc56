package report

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"chalet/internal/apperror"
)

var (
	headerColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	accentColor  = &props.Color{Red: 52, Green: 152, Blue: 219}
	mutedColor   = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 22, Style: fontstyle.Bold, Align: align.Center, Color: headerColor}
	metricStyle = props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center, Color: accentColor}
	labelStyle  = props.Text{Size: 9, Align: align.Center, Color: mutedColor}
	footerStyle = props.Text{Size: 8, Color: mutedColor, Align: align.Center}
)

// BuildPDF renders summary.pdf: the run's headline figures as a row of
// metric cards, in the teacher's metric-card summary layout.
func BuildPDF(s Summary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	var m core.Maroto = maroto.New(cfg)

	m.AddRow(14, text.NewCol(12, "Station Placement Run Summary", titleStyle))
	m.AddRow(4, line.NewCol(12, props.Line{Color: accentColor}))
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Mode: %s", s.Mode), labelStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), labelStyle),
	)
	m.AddRow(8)

	m.AddRow(20,
		col.New(4).Add(text.New(fmt.Sprintf("%.2f", s.ObjectiveValue), metricStyle), text.New("Objective Value", labelStyle)),
		col.New(4).Add(text.New(fmt.Sprintf("%d", s.NumStations), metricStyle), text.New("Stations Built", labelStyle)),
		col.New(4).Add(text.New(fmt.Sprintf("%d/%d", s.NumPairsCovered, s.NumPairsTotal), metricStyle), text.New("Pairs Covered", labelStyle)),
	)
	m.AddRow(6)
	m.AddRow(20,
		col.New(6).Add(text.New(fmt.Sprintf("%.1fs", s.WallTimeSeconds), metricStyle), text.New("Wall Time", labelStyle)),
		col.New(6).Add(text.New(coverageRate(s), metricStyle), text.New("Coverage Rate", labelStyle)),
	)

	m.AddRow(10)
	m.AddRow(2, line.NewCol(12, props.Line{Color: mutedColor}))
	m.AddRow(6, text.NewCol(12, "Generated by chalet", footerStyle))

	doc, err := m.Generate()
	if err != nil {
		return nil, apperror.Callback("pdf report generation failed", err)
	}
	return doc.GetBytes(), nil
}

func coverageRate(s Summary) string {
	if s.NumPairsTotal == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(s.NumPairsCovered)/float64(s.NumPairsTotal))
}
