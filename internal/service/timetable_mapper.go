package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func sectionCandidate(row models.SectionCandidate) scheduler.Candidate {
	return scheduler.Candidate{
		ID:            row.ID,
		SubjectID:     row.SubjectID,
		SubjectType:   scheduler.SubjectType(row.SubjectType),
		GroupID:       deref(row.GroupID),
		RoomID:        deref(row.RoomID),
		InstructorIDs: []string(row.InstructorIDs),
		ParentID:      deref(row.ParentID),
		Hours:         row.Hours(),
	}
}

func examCandidate(row models.ExamCandidate) scheduler.Candidate {
	return scheduler.Candidate{
		ID:            row.ID,
		SubjectID:     row.SubjectID,
		SubjectType:   scheduler.SubjectType(row.SubjectType),
		GroupID:       deref(row.GroupID),
		RoomID:        deref(row.RoomID),
		InstructorIDs: []string(row.InstructorIDs),
		SectionIDs:    []string(row.SectionIDs),
		Hours:         row.ExamHours,
	}
}

func placementFromDetail(row models.PlacementDetail) (scheduler.Placement, error) {
	weekday, err := scheduler.ParseWeekday(row.Weekday)
	if err != nil {
		return scheduler.Placement{}, fmt.Errorf("placement %s: %w", row.ID, err)
	}
	return scheduler.Placement{
		ID:            row.ID,
		CandidateID:   row.RefID,
		Weekday:       weekday,
		Span:          scheduler.SpanFromBounds(row.StartPeriod, row.EndPeriod),
		RoomID:        deref(row.RoomID),
		InstructorIDs: []string(row.InstructorIDs),
		GroupID:       deref(row.GroupID),
		SubjectID:     row.SubjectID,
		SectionIDs:    []string(row.SectionIDs),
		ParentID:      deref(row.ParentID),
	}, nil
}

func placementRecord(termID string, kind models.PlacementKind, placement scheduler.Placement) *models.Placement {
	return &models.Placement{
		TermID:      termID,
		Kind:        kind,
		RefID:       placement.CandidateID,
		Weekday:     placement.Weekday.String(),
		StartPeriod: placement.Span.Start,
		EndPeriod:   placement.Span.End(),
	}
}

func placementView(placement scheduler.Placement) dto.PlacementView {
	return dto.PlacementView{
		ID:            placement.ID,
		CandidateID:   placement.CandidateID,
		Weekday:       placement.Weekday.String(),
		StartPeriod:   placement.Span.Start,
		EndPeriod:     placement.Span.End(),
		StartTime:     scheduler.PeriodClock(placement.Span.Start),
		EndTime:       scheduler.PeriodClock(placement.Span.Start + placement.Span.Size),
		SubjectID:     placement.SubjectID,
		GroupID:       placement.GroupID,
		RoomID:        placement.RoomID,
		InstructorIDs: placement.InstructorIDs,
		SectionIDs:    placement.SectionIDs,
		ParentID:      placement.ParentID,
	}
}

func placementViews(placements []scheduler.Placement) []dto.PlacementView {
	views := make([]dto.PlacementView, 0, len(placements))
	for _, placement := range placements {
		views = append(views, placementView(placement))
	}
	return views
}

func unplacedViews(unplaced []scheduler.Unplaced) ([]dto.UnplacedView, map[string]int) {
	views := make([]dto.UnplacedView, 0, len(unplaced))
	byReason := make(map[string]int)
	for _, item := range unplaced {
		views = append(views, dto.UnplacedView{CandidateID: item.CandidateID, Reason: string(item.Reason)})
		byReason[string(item.Reason)]++
	}
	return views, byReason
}

// matchesFilter reports whether a placement belongs on a grid filtered by group, room or instructor.
func matchesFilter(placement scheduler.Placement, query dto.TimetableGridQuery) bool {
	if query.GroupID != "" && placement.GroupID != query.GroupID {
		return false
	}
	if query.RoomID != "" && placement.RoomID != query.RoomID {
		return false
	}
	if query.InstructorID != "" {
		for _, id := range placement.InstructorIDs {
			if id == query.InstructorID {
				return true
			}
		}
		return false
	}
	return true
}

// exportGrid converts a grid response into rows and cells for the file exporters.
func exportGrid(grid *dto.TimetableGridResponse) export.Grid {
	out := export.Grid{
		Title:       fmt.Sprintf("%s timetable %s", strings.ToLower(grid.Kind), grid.TermID),
		PeriodStart: grid.PeriodStart,
		PeriodEnd:   grid.PeriodEnd,
		PeriodLabel: scheduler.PeriodClock,
	}
	for row, day := range grid.Days {
		out.Rows = append(out.Rows, day.Weekday)
		for _, item := range day.Items {
			title := item.SubjectID
			if item.GroupID != "" {
				title += " / " + item.GroupID
			}
			var subtitle []string
			if item.RoomID != "" {
				subtitle = append(subtitle, item.RoomID)
			}
			subtitle = append(subtitle, item.InstructorIDs...)
			out.Cells = append(out.Cells, export.GridCell{
				Row:      row,
				Start:    item.StartPeriod,
				Size:     item.EndPeriod - item.StartPeriod + 1,
				Offset:   item.Offset,
				Overlap:  item.Overlap,
				Title:    title,
				Subtitle: strings.Join(subtitle, ", "),
			})
		}
	}
	return out
}
