package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"chronam-essays/internal/record"
)

const (
	// AnalyzedSheet имя листа с результатами анализа
	AnalyzedSheet = "Essays"

	// Ограничение Excel на длину значения ячейки
	maxCellChars = 32767
)

// WriteAnalyzedXLSX дублирует final.csv в книгу Excel для ручного просмотра.
// Значения длиннее лимита ячейки обрезаются.
func WriteAnalyzedXLSX(path string, rows []record.Analyzed) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName("Sheet1", AnalyzedSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeXLSXRow(f, 1, record.AnalyzedFields()); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeXLSXRow(f, i+2, row.Values()); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, rowNum int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if len([]rune(v)) > maxCellChars {
			v = string([]rune(v)[:maxCellChars])
		}
		if err := f.SetCellValue(AnalyzedSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", cell, err)
		}
	}
	return nil
}
