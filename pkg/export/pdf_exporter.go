package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin  = 10.0
	labelWidth  = 24.0
	headerRowH  = 8.0
	subRowH     = 11.0
	titleHeight = 10.0
)

// PDFExporter renders a timetable grid onto landscape A4 pages.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderGrid draws one band per row. Cells span their periods and stack by offset inside the band.
func (e *PDFExporter) RenderGrid(grid Grid) ([]byte, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	colW := (pageW - 2*pageMargin - labelWidth) / float64(grid.periods())

	y := e.startPage(pdf, grid, colW, tr)
	for row, label := range grid.Rows {
		bandH := float64(grid.depth(row)) * subRowH
		if y+bandH > pageH-pageMargin {
			y = e.startPage(pdf, grid, colW, tr)
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(235, 235, 235)
		pdf.SetXY(pageMargin, y)
		pdf.CellFormat(labelWidth, bandH, tr(label), "1", 0, "C", true, 0, "")

		pdf.SetDrawColor(200, 200, 200)
		for i := 0; i < grid.periods(); i++ {
			pdf.Rect(pageMargin+labelWidth+float64(i)*colW, y, colW, bandH, "D")
		}
		pdf.SetDrawColor(0, 0, 0)

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
			x := pageMargin + labelWidth + float64(start-grid.PeriodStart)*colW
			e.drawCell(pdf, x, y+float64(offset)*subRowH, float64(size)*colW, cell, tr)
		}
		y += bandH
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) startPage(pdf *gofpdf.Fpdf, grid Grid, colW float64, tr func(string) string) float64 {
	pdf.AddPage()
	y := pageMargin
	if grid.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetXY(pageMargin, y)
		pdf.CellFormat(0, titleHeight, tr(strings.ToUpper(grid.Title)), "", 0, "C", false, 0, "")
		y += titleHeight + 2
	}

	pdf.SetFont("Arial", "B", 7)
	pdf.SetXY(pageMargin, y)
	pdf.CellFormat(labelWidth, headerRowH, "", "1", 0, "C", false, 0, "")
	for period := grid.PeriodStart; period <= grid.PeriodEnd; period++ {
		pdf.CellFormat(colW, headerRowH, grid.label(period), "1", 0, "C", false, 0, "")
	}
	return y + headerRowH
}

func (e *PDFExporter) drawCell(pdf *gofpdf.Fpdf, x, y, w float64, cell GridCell, tr func(string) string) {
	if cell.Overlap {
		pdf.SetFillColor(255, 226, 204)
	} else {
		pdf.SetFillColor(212, 230, 255)
	}
	pdf.Rect(x, y, w, subRowH, "FD")

	pdf.SetFont("Arial", "B", 7)
	pdf.SetXY(x, y+1)
	pdf.CellFormat(w, subRowH/2-1, tr(fit(pdf, cell.Title, w-1)), "", 0, "C", false, 0, "")
	if cell.Subtitle != "" {
		pdf.SetFont("Arial", "", 6)
		pdf.SetXY(x, y+subRowH/2)
		pdf.CellFormat(w, subRowH/2-1, tr(fit(pdf, cell.Subtitle, w-1)), "", 0, "C", false, 0, "")
	}
}

// fit truncates text so it renders within width at the current font.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
