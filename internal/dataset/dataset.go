// Package dataset читает и пишет промежуточные файлы стадий:
// lc_output.csv, raw.csv, final.csv и журнал ошибок errors.txt.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chronam-essays/internal/record"
)

// LinkColumn единственная колонка lc_output.csv
const LinkColumn = "lccn"

var ErrMissingHeader = errors.New("csv file has no header row")

// WriteLinks пишет ссылки как есть, по одной в строке, без дедупликации
func WriteLinks(path string, links []string) error {
	rows := make([][]string, len(links))
	for i, link := range links {
		rows[i] = []string{link}
	}
	return writeCSV(path, []string{LinkColumn}, rows)
}

// ReadLinks читает колонку lccn; если её нет, берётся первая колонка
func ReadLinks(path string) ([]string, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := 0
	for i, name := range header {
		if strings.TrimSpace(name) == LinkColumn {
			col = i
			break
		}
	}

	links := make([]string, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if link := strings.TrimSpace(row[col]); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

// WriteRecords пишет raw.csv; заголовок пишется и при пустом наборе
func WriteRecords(path string, records []record.Record) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Values()
	}
	return writeCSV(path, record.Fields(), rows)
}

func ReadRecords(path string) ([]record.Record, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	records := make([]record.Record, len(rows))
	for i, row := range rows {
		records[i] = record.FromRow(header, row)
	}
	return records, nil
}

// WriteAnalyzed пишет final.csv: колонки raw.csv плюс people и organization
func WriteAnalyzed(path string, rows []record.Analyzed) error {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.Values()
	}
	return writeCSV(path, record.AnalyzedFields(), out)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrMissingHeader)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return header, rows, nil
}
