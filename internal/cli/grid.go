package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

type gridRenderer interface {
	RenderGrid(grid export.Grid) ([]byte, error)
}

var gridRenderers = map[string]gridRenderer{
	"pdf":  export.NewPDFExporter(),
	"csv":  export.NewCSVExporter(),
	"xlsx": export.NewXLSXExporter(),
}

func newGridCmd(root *rootOptions) *cobra.Command {
	var (
		input       string
		format      string
		output      string
		title       string
		periodStart int
		periodEnd   int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Stack overlapping placements and render the weekly grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()
			defer log.Sync() //nolint:errcheck

			renderer, ok := gridRenderers[strings.ToLower(format)]
			if !ok {
				return fmt.Errorf("unsupported format %q (want pdf, csv or xlsx)", format)
			}
			placements, err := readPlacements(input)
			if err != nil {
				return err
			}

			items := scheduler.ProcessOverlaps(placements)
			grid := buildGrid(title, periodStart, periodEnd, items)
			payload, err := renderer.RenderGrid(grid)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if _, err := w.Write(payload); err != nil {
				_ = closeOut()
				return fmt.Errorf("write grid: %w", err)
			}
			log.Info("grid rendered", zap.String("format", format), zap.Int("placements", len(items)), zap.Int("bytes", len(payload)))
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "placements file, either an array or a generate result")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "pdf, csv or xlsx")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&title, "title", "Timetable", "grid title")
	cmd.Flags().IntVar(&periodStart, "period-start", scheduler.DefaultPeriodStart, "first rendered period")
	cmd.Flags().IntVar(&periodEnd, "period-end", scheduler.DefaultPeriodEnd, "last rendered period")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// readPlacements accepts a bare placement array or a generate result object.
func readPlacements(path string) ([]scheduler.Placement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read placements: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	var placements []scheduler.Placement
	if len(raw) > 0 && raw[0] == '{' {
		var result scheduler.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		placements = result.Placements
	} else if err := json.Unmarshal(raw, &placements); err != nil {
		return nil, fmt.Errorf("decode placements: %w", err)
	}

	for _, p := range placements {
		if !p.Weekday.Valid() || p.Span.Size <= 0 {
			return nil, fmt.Errorf("placement %s has an invalid weekday or span", p.CandidateID)
		}
	}
	return placements, nil
}

// buildGrid lays out the default weekdays plus any other occupied day.
func buildGrid(title string, periodStart, periodEnd int, items []scheduler.GridItem) export.Grid {
	days := map[scheduler.Weekday]bool{}
	for _, day := range scheduler.DefaultWeekdays() {
		days[day] = true
	}
	for _, item := range items {
		days[item.Weekday] = true
	}
	ordered := make([]scheduler.Weekday, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	rowOf := make(map[scheduler.Weekday]int, len(ordered))
	grid := export.Grid{
		Title:       title,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PeriodLabel: scheduler.PeriodClock,
	}
	for i, day := range ordered {
		rowOf[day] = i
		grid.Rows = append(grid.Rows, day.String())
	}

	for _, item := range items {
		cellTitle := item.SubjectID
		if item.GroupID != "" {
			cellTitle += " / " + item.GroupID
		}
		var subtitle []string
		if item.RoomID != "" {
			subtitle = append(subtitle, item.RoomID)
		}
		subtitle = append(subtitle, item.InstructorIDs...)
		grid.Cells = append(grid.Cells, export.GridCell{
			Row:      rowOf[item.Weekday],
			Start:    item.Span.Start,
			Size:     item.Span.Size,
			Offset:   item.Offset,
			Overlap:  item.Overlap,
			Title:    cellTitle,
			Subtitle: strings.Join(subtitle, ", "),
		})
	}
	return grid
}
