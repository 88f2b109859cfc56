package report

import (
	"os"
	"path/filepath"

	"chalet/internal/accounting"
	"chalet/internal/apperror"
	"chalet/internal/csvio"
)

// WriteAll renders and writes report.xlsx and summary.pdf into dir.
func WriteAll(dir string, summary Summary, coverage []csvio.CoverageRow, stations []csvio.StationRow, usage []accounting.StationUsage) error {
	xlsx, err := BuildExcel(summary, coverage, stations, usage)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "report.xlsx"), xlsx); err != nil {
		return err
	}

	pdf, err := BuildPDF(summary)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "summary.pdf"), pdf)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperror.Load(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperror.Load(path, err)
	}
	return nil
}
