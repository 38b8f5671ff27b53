// Package export renders coverage results as XLSX workbooks.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/coverage-extractor/internal/coverage"
)

// Sheet names of the workbook.
const (
	SheetCoverage = "Coverage"
	SheetDrivers  = "Drivers"
	SheetVehicles = "Vehicles"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// CoverageXLSX returns a workbook with one row per coverage value on the
// Coverage sheet plus one row per record on the Drivers and Vehicles sheets.
func (s *Service) CoverageXLSX(res coverage.CoverageResult) ([]byte, error) {
	start := time.Now()
	f, err := s.build(res)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"fields", len(res),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// SaveCoverageXLSX writes the workbook to path.
func (s *Service) SaveCoverageXLSX(res coverage.CoverageResult, path string) error {
	f, err := s.build(res)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save %s: %w", path, err)
	}
	s.logger.Info("export.xlsx.saved", "path", path)
	return nil
}

func (s *Service) build(res coverage.CoverageResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetCoverage); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetDrivers, SheetVehicles} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	writeRow(f, SheetCoverage, 1, []any{"Field", "Detail", "Value"})
	row := 2
	for _, m := range res {
		switch m.Key {
		case coverage.KeyDrivers, coverage.KeyVehicles:
			continue
		}
		if obj, ok := m.Value.(coverage.Object); ok {
			for _, sub := range obj {
				writeRow(f, SheetCoverage, row, []any{m.Key, sub.Key, cellValue(sub.Value)})
				row++
			}
			continue
		}
		writeRow(f, SheetCoverage, row, []any{m.Key, "", cellValue(m.Value)})
		row++
	}
	_ = f.SetColWidth(SheetCoverage, "A", "A", 28)
	_ = f.SetColWidth(SheetCoverage, "B", "B", 16)
	_ = f.SetColWidth(SheetCoverage, "C", "C", 18)

	writeRecords(f, SheetDrivers, res, coverage.KeyDrivers,
		[]string{coverage.KeyFirstName, coverage.KeyLastName})
	writeRecords(f, SheetVehicles, res, coverage.KeyVehicles,
		[]string{
			coverage.KeyYear, coverage.KeyMake, coverage.KeyModel, coverage.KeyVIN,
			coverage.KeyGaragingZIP, coverage.KeyPrimaryUse, coverage.KeyAnnualMiles,
			coverage.KeyOwnershipLength,
		})

	idx, _ := f.GetSheetIndex(SheetCoverage)
	f.SetActiveSheet(idx)
	return f, nil
}

// writeRecords lays out a list of objects as a table. Columns start with
// base and grow with any extra keys in order of first appearance.
func writeRecords(f *excelize.File, sheet string, res coverage.CoverageResult, key string, base []string) {
	v, ok := res.Get(key)
	if !ok {
		writeRow(f, sheet, 1, toAny(base))
		return
	}
	list, ok := v.(coverage.List)
	if !ok {
		list = coverage.List{v}
	}

	cols := append([]string(nil), base...)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	for _, item := range list {
		obj, ok := item.(coverage.Object)
		if !ok {
			continue
		}
		for _, m := range obj {
			if _, seen := index[m.Key]; !seen {
				index[m.Key] = len(cols)
				cols = append(cols, m.Key)
			}
		}
	}

	writeRow(f, sheet, 1, toAny(cols))
	for r, item := range list {
		vals := make([]any, len(cols))
		if obj, ok := item.(coverage.Object); ok {
			for _, m := range obj {
				vals[index[m.Key]] = cellValue(m.Value)
			}
		} else {
			vals[0] = cellValue(item)
		}
		writeRow(f, sheet, r+2, vals)
	}
	last, _ := excelize.ColumnNumberToName(len(cols))
	_ = f.SetColWidth(sheet, "A", last, 18)
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &vals)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func cellValue(n coverage.Node) any {
	switch t := n.(type) {
	case coverage.Text:
		return string(t)
	case coverage.Integer:
		return int64(t)
	case coverage.Float:
		return float64(t)
	case coverage.Bool:
		return bool(t)
	case coverage.Null, nil:
		return nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
