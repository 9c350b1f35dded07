package dto

import "time"

// GenerateTimetableRequest starts a generation run for a term. Unset fields fall back to configured defaults.
type GenerateTimetableRequest struct {
	TermID         string   `json:"termId" validate:"required"`
	Weekdays       []string `json:"weekdays" validate:"omitempty,min=1,dive,required"`
	PeriodStart    *int     `json:"periodStart" validate:"omitempty,min=1"`
	PeriodEnd      *int     `json:"periodEnd" validate:"omitempty,min=1"`
	MaxPerDay      *int     `json:"maxPerDay" validate:"omitempty,min=1"`
	ConsecutiveGap *int     `json:"consecutiveGap" validate:"omitempty,min=0"`
	RestGap        *int     `json:"restGap" validate:"omitempty,min=0"`
	ExamGap        *int     `json:"examGap" validate:"omitempty,min=0"`
	GroupID        string   `json:"groupId"`
	SubjectType    string   `json:"subjectType" validate:"omitempty,oneof=COMPULSORY ELECTIVE"`
}

// PlacementView is a placement as returned to clients.
type PlacementView struct {
	ID            string   `json:"id"`
	CandidateID   string   `json:"candidateId"`
	Weekday       string   `json:"weekday"`
	StartPeriod   int      `json:"startPeriod"`
	EndPeriod     int      `json:"endPeriod"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	SubjectID     string   `json:"subjectId"`
	GroupID       string   `json:"groupId,omitempty"`
	RoomID        string   `json:"roomId,omitempty"`
	InstructorIDs []string `json:"instructorIds,omitempty"`
	SectionIDs    []string `json:"sectionIds,omitempty"`
	ParentID      string   `json:"parentId,omitempty"`
}

// UnplacedView names a candidate the run could not place and why.
type UnplacedView struct {
	CandidateID string `json:"candidateId"`
	Reason      string `json:"reason"`
}

// GenerationStats summarises a generation run.
type GenerationStats struct {
	Candidates    int   `json:"candidates"`
	AlreadyPlaced int   `json:"alreadyPlaced"`
	OutOfScope    int   `json:"outOfScope"`
	Placed        int   `json:"placed"`
	Unplaced      int   `json:"unplaced"`
	DurationMs    int64 `json:"durationMs"`
}

// GenerateTimetableResponse returns the committed placements of a run alongside the full timetable.
type GenerateTimetableResponse struct {
	TermID     string          `json:"termId"`
	Variant    string          `json:"variant"`
	Placements []PlacementView `json:"placements"`
	Committed  []PlacementView `json:"committed"`
	Unplaced   []UnplacedView  `json:"unplaced"`
	Stats      GenerationStats `json:"stats"`
}

// TimetableGridQuery selects the placements rendered on a grid.
type TimetableGridQuery struct {
	TermID       string `form:"termId" json:"termId" validate:"required"`
	Kind         string `form:"kind" json:"kind" validate:"omitempty,oneof=SECTION EXAM"`
	GroupID      string `form:"groupId" json:"groupId"`
	RoomID       string `form:"roomId" json:"roomId"`
	InstructorID string `form:"instructorId" json:"instructorId"`
}

// GridItemView is a placement annotated with its stacking position.
type GridItemView struct {
	PlacementView
	Overlap bool `json:"overlap"`
	Offset  int  `json:"offset"`
}

// GridDayView groups the items of one weekday row.
type GridDayView struct {
	Weekday string         `json:"weekday"`
	Depth   int            `json:"depth"`
	Items   []GridItemView `json:"items"`
}

// TimetableGridResponse is the renderable weekly grid.
type TimetableGridResponse struct {
	TermID      string        `json:"termId"`
	Kind        string        `json:"kind"`
	PeriodStart int           `json:"periodStart"`
	PeriodEnd   int           `json:"periodEnd"`
	Days        []GridDayView `json:"days"`
}

// TimetableExport is a rendered grid file.
type TimetableExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ResetTimetableResponse reports how many placements a reset removed.
type ResetTimetableResponse struct {
	TermID  string `json:"termId"`
	Kind    string `json:"kind"`
	Removed int64  `json:"removed"`
}

// TimetableGeneratedEvent is published after a generation run commits its placements.
type TimetableGeneratedEvent struct {
	TermID       string         `json:"termId"`
	Variant      string         `json:"variant"`
	Placed       int            `json:"placed"`
	Unplaced     int            `json:"unplaced"`
	ByReason     map[string]int `json:"byReason,omitempty"`
	PlacementIDs []string       `json:"placementIds"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

// TimetableResetEvent is published after stored placements are removed.
type TimetableResetEvent struct {
	TermID     string    `json:"termId"`
	Kind       string    `json:"kind"`
	Removed    int64     `json:"removed"`
	OccurredAt time.Time `json:"occurredAt"`
}
