package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSheet is the worksheet that holds the rendered grid.
const XLSXSheet = "Timetable"

const (
	xlsxTitleRow  = 1
	xlsxHeaderRow = 2
	xlsxFirstBand = 3
)

// XLSXExporter renders a timetable grid into a single worksheet with merged cells.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

type xlsxStyles struct {
	title   int
	header  int
	label   int
	single  int
	overlap int
}

// RenderGrid lays rows out as bands of depth sheet rows. Column A holds the row label and period p sits in column p-PeriodStart+2.
func (e *XLSXExporter) RenderGrid(grid Grid) ([]byte, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	lastCol := grid.periods() + 1
	if err := e.writeHeader(f, grid, lastCol, styles); err != nil {
		return nil, err
	}

	top := xlsxFirstBand
	for row, label := range grid.Rows {
		depth := grid.depth(row)
		if err := e.writeBand(f, grid, row, label, top, depth, styles); err != nil {
			return nil, err
		}
		top += depth
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "999999", Style: 1},
		{Type: "right", Color: "999999", Style: 1},
		{Type: "top", Color: "999999", Style: 1},
		{Type: "bottom", Color: "999999", Style: 1},
	}
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	specs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 14}, Alignment: centered},
		{Font: &excelize.Font{Bold: true, Size: 9}, Alignment: centered, Border: border},
		{Font: &excelize.Font{Bold: true}, Alignment: centered, Border: border, Fill: excelize.Fill{Type: "pattern", Color: []string{"EBEBEB"}, Pattern: 1}},
		{Alignment: centered, Border: border, Fill: excelize.Fill{Type: "pattern", Color: []string{"D4E6FF"}, Pattern: 1}},
		{Alignment: centered, Border: border, Fill: excelize.Fill{Type: "pattern", Color: []string{"FFE2CC"}, Pattern: 1}},
	}
	ids := make([]int, len(specs))
	for i, spec := range specs {
		id, err := f.NewStyle(spec)
		if err != nil {
			return xlsxStyles{}, fmt.Errorf("create xlsx style: %w", err)
		}
		ids[i] = id
	}
	return xlsxStyles{title: ids[0], header: ids[1], label: ids[2], single: ids[3], overlap: ids[4]}, nil
}

func (e *XLSXExporter) writeHeader(f *excelize.File, grid Grid, lastCol int, styles xlsxStyles) error {
	if grid.Title != "" {
		left, _ := excelize.CoordinatesToCellName(1, xlsxTitleRow)
		right, _ := excelize.CoordinatesToCellName(lastCol, xlsxTitleRow)
		if err := f.SetCellValue(XLSXSheet, left, strings.ToUpper(grid.Title)); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		if err := f.MergeCell(XLSXSheet, left, right); err != nil {
			return fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStyle(XLSXSheet, left, right, styles.title); err != nil {
			return fmt.Errorf("style title: %w", err)
		}
	}

	if err := f.SetColWidth(XLSXSheet, "A", "A", 14); err != nil {
		return fmt.Errorf("size label column: %w", err)
	}
	for period := grid.PeriodStart; period <= grid.PeriodEnd; period++ {
		cell, _ := excelize.CoordinatesToCellName(period-grid.PeriodStart+2, xlsxHeaderRow)
		if err := f.SetCellValue(XLSXSheet, cell, grid.label(period)); err != nil {
			return fmt.Errorf("write period header: %w", err)
		}
	}
	left, _ := excelize.CoordinatesToCellName(1, xlsxHeaderRow)
	right, _ := excelize.CoordinatesToCellName(lastCol, xlsxHeaderRow)
	if err := f.SetCellStyle(XLSXSheet, left, right, styles.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func (e *XLSXExporter) writeBand(f *excelize.File, grid Grid, row int, label string, top, depth int, styles xlsxStyles) error {
	labelTop, _ := excelize.CoordinatesToCellName(1, top)
	labelBottom, _ := excelize.CoordinatesToCellName(1, top+depth-1)
	if err := f.SetCellValue(XLSXSheet, labelTop, label); err != nil {
		return fmt.Errorf("write row label: %w", err)
	}
	if depth > 1 {
		if err := f.MergeCell(XLSXSheet, labelTop, labelBottom); err != nil {
			return fmt.Errorf("merge row label: %w", err)
		}
	}
	if err := f.SetCellStyle(XLSXSheet, labelTop, labelBottom, styles.label); err != nil {
		return fmt.Errorf("style row label: %w", err)
	}

	for _, cell := range grid.Cells {
		if cell.Row != row {
			continue
		}
		start, size, ok := grid.visible(cell)
		if !ok {
			continue
		}
		offset := cell.Offset
		if offset < 0 {
			offset = 0
		}
		sheetRow := top + offset
		left, _ := excelize.CoordinatesToCellName(start-grid.PeriodStart+2, sheetRow)
		right, _ := excelize.CoordinatesToCellName(start-grid.PeriodStart+size+1, sheetRow)

		value := cell.Title
		if cell.Subtitle != "" {
			value += "\n" + cell.Subtitle
		}
		if err := f.SetCellValue(XLSXSheet, left, value); err != nil {
			return fmt.Errorf("write cell %q: %w", cell.Title, err)
		}
		if size > 1 {
			if err := f.MergeCell(XLSXSheet, left, right); err != nil {
				return fmt.Errorf("merge cell %q: %w", cell.Title, err)
			}
		}
		style := styles.single
		if cell.Overlap {
			style = styles.overlap
		}
		if err := f.SetCellStyle(XLSXSheet, left, right, style); err != nil {
			return fmt.Errorf("style cell %q: %w", cell.Title, err)
		}
	}

	for r := top; r < top+depth; r++ {
		if err := f.SetRowHeight(XLSXSheet, r, 30); err != nil {
			return fmt.Errorf("size row: %w", err)
		}
	}
	return nil
}
