package models

import (
	"time"

	"github.com/lib/pq"
)

// PlacementKind tells whether a placement realizes a section or an exam.
type PlacementKind string

const (
	PlacementKindSection PlacementKind = "SECTION"
	PlacementKindExam    PlacementKind = "EXAM"
)

// Placement is a stored timetable slot for a section or exam.
type Placement struct {
	ID          string        `db:"id" json:"id"`
	TermID      string        `db:"term_id" json:"term_id"`
	Kind        PlacementKind `db:"kind" json:"kind"`
	RefID       string        `db:"ref_id" json:"ref_id"`
	Weekday     string        `db:"weekday" json:"weekday"`
	StartPeriod int           `db:"start_period" json:"start_period"`
	EndPeriod   int           `db:"end_period" json:"end_period"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// PlacementDetail joins a placement with the resources of the section or exam it realizes.
type PlacementDetail struct {
	Placement
	SubjectID     string         `db:"subject_id" json:"subject_id"`
	GroupID       *string        `db:"group_id" json:"group_id,omitempty"`
	RoomID        *string        `db:"room_id" json:"room_id,omitempty"`
	ParentID      *string        `db:"parent_id" json:"parent_id,omitempty"`
	InstructorIDs pq.StringArray `db:"instructor_ids" json:"instructor_ids"`
	SectionIDs    pq.StringArray `db:"section_ids" json:"section_ids"`
}
