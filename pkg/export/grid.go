package export

import (
	"fmt"
	"strconv"
)

// Grid is a weekly timetable laid out as rows of days and columns of periods.
type Grid struct {
	Title       string
	Rows        []string
	PeriodStart int
	PeriodEnd   int
	// PeriodLabel formats the start of a period. Defaults to the period number.
	PeriodLabel func(period int) string
	Cells       []GridCell
}

// GridCell is one placed block. Offset selects the stacked sub-row; negative means the cell stands alone.
type GridCell struct {
	Row      int
	Start    int
	Size     int
	Offset   int
	Overlap  bool
	Title    string
	Subtitle string
}

func (g Grid) validate() error {
	if len(g.Rows) == 0 {
		return fmt.Errorf("grid requires at least one row")
	}
	if g.PeriodStart < 1 || g.PeriodEnd < g.PeriodStart {
		return fmt.Errorf("invalid period window [%d, %d]", g.PeriodStart, g.PeriodEnd)
	}
	for _, cell := range g.Cells {
		if cell.Row < 0 || cell.Row >= len(g.Rows) {
			return fmt.Errorf("cell %q references unknown row %d", cell.Title, cell.Row)
		}
	}
	return nil
}

func (g Grid) periods() int {
	return g.PeriodEnd - g.PeriodStart + 1
}

func (g Grid) label(period int) string {
	if g.PeriodLabel != nil {
		return g.PeriodLabel(period)
	}
	return strconv.Itoa(period)
}

// depth returns how many stacked sub-rows a row needs.
func (g Grid) depth(row int) int {
	depth := 1
	for _, cell := range g.Cells {
		if cell.Row == row && cell.Offset+1 > depth {
			depth = cell.Offset + 1
		}
	}
	return depth
}

// visible clips a cell to the period window and reports whether anything remains.
func (g Grid) visible(cell GridCell) (start, size int, ok bool) {
	start = cell.Start
	end := cell.Start + cell.Size
	if start < g.PeriodStart {
		start = g.PeriodStart
	}
	if end > g.PeriodEnd+1 {
		end = g.PeriodEnd + 1
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end - start, true
}
