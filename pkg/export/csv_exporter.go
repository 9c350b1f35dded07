package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

var gridHeaders = []string{"day", "start_period", "end_period", "start_time", "end_time", "title", "subtitle", "overlap", "offset"}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGrid flattens a grid into one CSV line per cell, in cell order.
func (e *CSVExporter) RenderGrid(grid Grid) ([]byte, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	data := Dataset{Headers: gridHeaders, Rows: make([]map[string]string, 0, len(grid.Cells))}
	for _, cell := range grid.Cells {
		end := cell.Start + cell.Size
		data.Rows = append(data.Rows, map[string]string{
			"day":          grid.Rows[cell.Row],
			"start_period": strconv.Itoa(cell.Start),
			"end_period":   strconv.Itoa(end - 1),
			"start_time":   grid.label(cell.Start),
			"end_time":     grid.label(end),
			"title":        cell.Title,
			"subtitle":     cell.Subtitle,
			"overlap":      strconv.FormatBool(cell.Overlap),
			"offset":       strconv.Itoa(cell.Offset),
		})
	}
	return e.Render(data)
}
