package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet indicates the workbook's first sheet held no data rows.
var ErrEmptySheet = errors.New("tabular: empty sheet")

// Sheet is the first worksheet of a workbook read as header-keyed rows.
// Rows preserve worksheet order; missing cells are absent from the map.
type Sheet struct {
	Header []string
	Rows   []map[string]string
}

// ReadFirstSheet decodes workbook bytes and returns the first sheet as
// row maps keyed by the values of the first row. Workbook encoding is
// fully contained here; callers only ever see row maps.
func ReadFirstSheet(data []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Sheet{}, fmt.Errorf("tabular: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Sheet{}, fmt.Errorf("tabular: read sheet: %w", err)
	}
	if len(rows) < 2 {
		return Sheet{}, ErrEmptySheet
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	sheet := Sheet{Header: header}
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(header))
		empty := true
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			value := strings.TrimSpace(cells[i])
			if value != "" {
				empty = false
			}
			row[name] = value
		}
		if empty {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if len(sheet.Rows) == 0 {
		return Sheet{}, ErrEmptySheet
	}
	return sheet, nil
}

// WriteSheet encodes a single worksheet workbook from a header row and
// string data rows.
func WriteSheet(sheetName string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("tabular: rename sheet: %w", err)
	}
	if err := setRow(f, sheetName, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, sheetName, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("tabular: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, line int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("tabular: set row %d: %w", line, err)
	}
	return nil
}
